package transport_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/lsp-go/transport"
)

func TestShutdownManager(t *testing.T) {
	t.Run("tracks in-flight dispatches", func(t *testing.T) {
		sm := transport.NewShutdownManager(transport.DefaultShutdownConfig())

		if sm.InFlightRequests() != 0 {
			t.Error("expected 0 in-flight dispatches initially")
		}

		if !sm.TrackRequest() {
			t.Error("expected TrackRequest to succeed")
		}

		if sm.InFlightRequests() != 1 {
			t.Errorf("expected 1 in-flight dispatch, got %d", sm.InFlightRequests())
		}

		sm.CompleteRequest()

		if sm.InFlightRequests() != 0 {
			t.Errorf("expected 0 in-flight dispatches after completion, got %d", sm.InFlightRequests())
		}
	})

	t.Run("rejects messages when draining", func(t *testing.T) {
		sm := transport.NewShutdownManager(transport.ShutdownConfig{
			Timeout: 100 * time.Millisecond,
		})

		go sm.Shutdown(context.Background())

		// Wait for draining to start
		time.Sleep(20 * time.Millisecond)

		if sm.TrackRequest() {
			t.Error("expected TrackRequest to fail during draining")
		}

		if !sm.IsDraining() {
			t.Error("expected IsDraining to return true")
		}
	})

	t.Run("waits for in-flight dispatches", func(t *testing.T) {
		sm := transport.NewShutdownManager(transport.ShutdownConfig{
			Timeout: 1 * time.Second,
		})

		if !sm.TrackRequest() {
			t.Fatal("failed to track dispatch")
		}

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- sm.Shutdown(context.Background())
		}()

		select {
		case <-shutdownDone:
			t.Error("shutdown completed before dispatch was done")
		case <-time.After(50 * time.Millisecond):
			// Expected - shutdown is waiting
		}

		sm.CompleteRequest()

		select {
		case err := <-shutdownDone:
			if err != nil {
				t.Errorf("unexpected shutdown error: %v", err)
			}
		case <-time.After(200 * time.Millisecond):
			t.Error("shutdown did not complete after dispatch finished")
		}
	})

	t.Run("times out if dispatches don't complete", func(t *testing.T) {
		sm := transport.NewShutdownManager(transport.ShutdownConfig{
			Timeout: 100 * time.Millisecond,
		})

		if !sm.TrackRequest() {
			t.Fatal("failed to track dispatch")
		}

		err := sm.Shutdown(context.Background())
		if err == nil {
			t.Error("expected timeout error")
		}

		if sm.InFlightRequests() != 1 {
			t.Errorf("expected 1 in-flight dispatch, got %d", sm.InFlightRequests())
		}
	})

	t.Run("calls lifecycle hooks", func(t *testing.T) {
		var startCalled, drainCalled, completeCalled atomic.Bool
		var completeErr error

		sm := transport.NewShutdownManager(transport.ShutdownConfig{
			Timeout: 100 * time.Millisecond,
			OnShutdownStart: func() {
				startCalled.Store(true)
			},
			OnDrainStart: func() {
				drainCalled.Store(true)
			},
			OnShutdownComplete: func(err error) {
				completeCalled.Store(true)
				completeErr = err
			},
		})

		err := sm.Shutdown(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		if !startCalled.Load() {
			t.Error("OnShutdownStart not called")
		}
		if !drainCalled.Load() {
			t.Error("OnDrainStart not called")
		}
		if !completeCalled.Load() {
			t.Error("OnShutdownComplete not called")
		}
		if completeErr != nil {
			t.Errorf("unexpected error in OnShutdownComplete: %v", completeErr)
		}
	})

	t.Run("respects context cancellation during drain delay", func(t *testing.T) {
		sm := transport.NewShutdownManager(transport.ShutdownConfig{
			Timeout:    1 * time.Second,
			DrainDelay: 1 * time.Second,
		})

		ctx, cancel := context.WithCancel(context.Background())

		start := time.Now()
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		err := sm.Shutdown(ctx)
		elapsed := time.Since(start)

		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}

		if elapsed > 200*time.Millisecond {
			t.Errorf("shutdown took too long (%v), should have cancelled quickly", elapsed)
		}
	})
}

func TestDefaultShutdownConfig(t *testing.T) {
	config := transport.DefaultShutdownConfig()

	if config.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", config.Timeout)
	}

	if config.DrainDelay != 0 {
		t.Errorf("expected 0 drain delay, got %v", config.DrainDelay)
	}
}
