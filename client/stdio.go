package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"encoding/json"

	"github.com/felixgeelhaar/lsp-go/protocol"
	"github.com/felixgeelhaar/lsp-go/transport"
)

// StdioTransport talks to a language server over Content-Length framed
// stdio, typically a spawned subprocess.
type StdioTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr io.Reader

	mu       sync.Mutex
	respChan map[string]chan *protocol.Response
	closed   bool

	notifications chan *protocol.Notification
	readWG        sync.WaitGroup
}

// NewStdioTransport spawns command and connects to its stdio.
func NewStdioTransport(command string, args ...string) (*StdioTransport, error) {
	cmd := exec.Command(command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	t := newPipeTransport(stdin, stdout)
	t.cmd = cmd
	t.stderr = stderr
	return t, nil
}

// newPipeTransport connects a transport directly to a reader and writer,
// with no subprocess. Tests use it to fake the server side.
func newPipeTransport(in io.WriteCloser, out io.Reader) *StdioTransport {
	t := &StdioTransport{
		stdin:         in,
		respChan:      make(map[string]chan *protocol.Response),
		notifications: make(chan *protocol.Notification, 64),
	}

	t.readWG.Add(1)
	go t.readLoop(bufio.NewReader(out))

	return t
}

// Send implements Transport.
func (t *StdioTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if req.IsNotification() {
		return nil, errors.New("request has no id")
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, errors.New("transport closed")
	}
	respCh := make(chan *protocol.Response, 1)
	key := string(req.ID)
	t.respChan[key] = respCh
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.respChan, key)
		t.mu.Unlock()
	}()

	if err := t.writeMessage(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-respCh:
		if !ok {
			return nil, errors.New("connection closed")
		}
		return resp, nil
	}
}

// Notify implements Transport.
func (t *StdioTransport) Notify(_ context.Context, n *protocol.Notification) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return errors.New("transport closed")
	}
	t.mu.Unlock()

	if err := t.writeMessage(n); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// Notifications implements Transport.
func (t *StdioTransport) Notifications() <-chan *protocol.Notification {
	return t.notifications
}

// Close closes the connection and, for spawned servers, terminates the
// subprocess. Close is safe to call more than once.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	// EOF on the server's stdin ends its read loop.
	_ = t.stdin.Close()

	t.readWG.Wait()

	if t.cmd == nil {
		return nil
	}
	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	return t.cmd.Wait()
}

// Stderr returns the subprocess stderr, or nil for pipe transports.
func (t *StdioTransport) Stderr() io.Reader {
	return t.stderr
}

func (t *StdioTransport) writeMessage(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return transport.WriteMessage(t.stdin, data)
}

// readLoop reads framed messages and routes them: messages with an id
// and no method are responses for pending calls, messages with a method
// and no id are server-to-client notifications. Server-to-client
// requests are not supported and are dropped.
func (t *StdioTransport) readLoop(r *bufio.Reader) {
	defer t.readWG.Done()
	defer close(t.notifications)
	defer func() {
		t.mu.Lock()
		for _, ch := range t.respChan {
			close(ch)
		}
		t.respChan = make(map[string]chan *protocol.Response)
		t.mu.Unlock()
	}()

	for {
		body, err := transport.ReadMessage(r)
		if err != nil {
			return
		}

		var msg struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.Unmarshal(body, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method == "" && len(msg.ID) > 0:
			var resp protocol.Response
			if err := json.Unmarshal(body, &resp); err != nil {
				continue
			}
			t.mu.Lock()
			if ch, ok := t.respChan[string(resp.ID)]; ok {
				ch <- &resp
			}
			t.mu.Unlock()
		case msg.Method != "" && len(msg.ID) == 0:
			var n protocol.Notification
			if err := json.Unmarshal(body, &n); err != nil {
				continue
			}
			select {
			case t.notifications <- &n:
			default:
				// Slow consumer; drop rather than stall the read loop.
			}
		}
	}
}
