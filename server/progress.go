package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/lsp-go/protocol"
)

// ProgressToken identifies one work-done progress stream. Clients supply
// tokens in the workDoneToken member of request params.
type ProgressToken string

// WorkDoneProgress is the value member of a $/progress notification.
type WorkDoneProgress struct {
	Kind        string `json:"kind"`
	Title       string `json:"title,omitempty"`
	Message     string `json:"message,omitempty"`
	Percentage  *int   `json:"percentage,omitempty"`
	Cancellable bool   `json:"cancellable,omitempty"`
}

// progressParams is the payload of a $/progress notification.
type progressParams struct {
	Token ProgressToken    `json:"token"`
	Value WorkDoneProgress `json:"value"`
}

// ProgressReporter reports work-done progress for a long-running request.
type ProgressReporter interface {
	// Begin opens the progress stream with a title.
	Begin(title string) error
	// Report sends an intermediate update. A nil percentage omits the bar.
	Report(message string, percentage *int) error
	// End closes the progress stream.
	End(message string) error
	// Token returns the progress token, or empty string if none.
	Token() ProgressToken
}

// progressReporter sends $/progress notifications through a Publisher.
type progressReporter struct {
	token     ProgressToken
	publisher Publisher
	mu        sync.Mutex
	last      int
}

// NewProgressReporter creates a reporter sending $/progress notifications
// for token via publisher. An empty token yields a no-op reporter.
func NewProgressReporter(token ProgressToken, publisher Publisher) ProgressReporter {
	if token == "" || publisher == nil {
		return noopProgressReporter{}
	}
	return &progressReporter{token: token, publisher: publisher}
}

func (p *progressReporter) Token() ProgressToken {
	return p.token
}

func (p *progressReporter) Begin(title string) error {
	return p.publisher.Notify(protocol.MethodProgress, progressParams{
		Token: p.token,
		Value: WorkDoneProgress{Kind: "begin", Title: title},
	})
}

func (p *progressReporter) Report(message string, percentage *int) error {
	p.mu.Lock()
	// Percentage must not decrease.
	if percentage != nil {
		if *percentage < p.last {
			v := p.last
			percentage = &v
		} else {
			p.last = *percentage
		}
	}
	p.mu.Unlock()

	return p.publisher.Notify(protocol.MethodProgress, progressParams{
		Token: p.token,
		Value: WorkDoneProgress{Kind: "report", Message: message, Percentage: percentage},
	})
}

func (p *progressReporter) End(message string) error {
	return p.publisher.Notify(protocol.MethodProgress, progressParams{
		Token: p.token,
		Value: WorkDoneProgress{Kind: "end", Message: message},
	})
}

// noopProgressReporter discards all updates.
type noopProgressReporter struct{}

func (noopProgressReporter) Begin(string) error        { return nil }
func (noopProgressReporter) Report(string, *int) error { return nil }
func (noopProgressReporter) End(string) error          { return nil }
func (noopProgressReporter) Token() ProgressToken      { return "" }

// progressContextKey is the context key for the progress reporter.
type progressContextKey struct{}

// ContextWithProgress returns a context with the progress reporter attached.
func ContextWithProgress(ctx context.Context, reporter ProgressReporter) context.Context {
	return context.WithValue(ctx, progressContextKey{}, reporter)
}

// ProgressFromContext returns the progress reporter from context, or a
// no-op reporter if none.
func ProgressFromContext(ctx context.Context) ProgressReporter {
	if reporter, ok := ctx.Value(progressContextKey{}).(ProgressReporter); ok {
		return reporter
	}
	return noopProgressReporter{}
}

// ExtractProgressToken extracts the workDoneToken from request params.
func ExtractProgressToken(params json.RawMessage) ProgressToken {
	if len(params) == 0 {
		return ""
	}

	var p struct {
		WorkDoneToken json.RawMessage `json:"workDoneToken"`
	}
	if err := json.Unmarshal(params, &p); err != nil || len(p.WorkDoneToken) == 0 {
		return ""
	}

	// Tokens may be JSON strings or numbers; both key the stream by their
	// literal text.
	var s string
	if err := json.Unmarshal(p.WorkDoneToken, &s); err == nil {
		return ProgressToken(s)
	}
	return ProgressToken(p.WorkDoneToken)
}
