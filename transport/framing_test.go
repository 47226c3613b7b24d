package transport

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "basic frame",
			input: "Content-Length: 2\r\n\r\nhi",
			want:  "hi",
		},
		{
			name:  "lowercase header name",
			input: "content-length: 5\r\n\r\nhello",
			want:  "hello",
		},
		{
			name:  "extra headers are skipped",
			input: "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: 4\r\n\r\nbody",
			want:  "body",
		},
		{
			name:  "bare LF line endings",
			input: "Content-Length: 3\n\nabc",
			want:  "abc",
		},
		{
			name:    "missing content length",
			input:   "Content-Type: application/vscode-jsonrpc\r\n\r\nbody",
			wantErr: ErrMissingContentLength,
		},
		{
			name:    "truncated body",
			input:   "Content-Length: 10\r\n\r\nshort",
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadMessage(bufio.NewReader(strings.NewReader(tt.input)))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadMessage_MalformedLength(t *testing.T) {
	_, err := ReadMessage(bufio.NewReader(strings.NewReader("Content-Length: ten\r\n\r\nbody")))
	if err == nil {
		t.Error("expected error for non-numeric Content-Length")
	}
}

func TestReadMessage_Sequence(t *testing.T) {
	input := "Content-Length: 3\r\n\r\noneContent-Length: 3\r\n\r\ntwo"
	reader := bufio.NewReader(strings.NewReader(input))

	for _, want := range []string{"one", "two"} {
		got, err := ReadMessage(reader)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != want {
			t.Errorf("body = %q, want %q", got, want)
		}
	}

	if _, err := ReadMessage(reader); !errors.Is(err, io.EOF) {
		t.Errorf("error after last message = %v, want EOF", err)
	}
}

func TestWriteMessage(t *testing.T) {
	var out bytes.Buffer
	if err := WriteMessage(&out, []byte(`{"jsonrpc":"2.0"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Content-Length: 17\r\n\r\n" + `{"jsonrpc":"2.0"}`
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestFraming_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)

	if err := WriteMessage(&buf, body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ReadMessage(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("round trip = %q, want %q", got, body)
	}
}
