package endpoint

import "encoding/json"

// Buffer accumulates the text of outgoing JSON-RPC messages.
//
// A Buffer holds either a single message under construction (the response
// channel) or a sequence of complete messages separated by boundaries (the
// notification channel). Boundaries are recorded with EndMessage and
// recovered with Messages; the zero value is an empty buffer ready for use.
type Buffer struct {
	data  []byte
	marks []int
}

// Write appends p to the buffer. It never fails; the error return satisfies
// io.Writer so encoders can target a Buffer directly.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) {
	b.data = append(b.data, s...)
}

// WriteByte appends c to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

// AppendJSON marshals v and appends the result to the buffer.
// The buffer is unchanged if marshaling fails.
func (b *Buffer) AppendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.data = append(b.data, data...)
	return nil
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the accumulated bytes. The slice is valid until the next
// mutation of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset discards all accumulated bytes and boundaries.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.marks = b.marks[:0]
}

// EndMessage records a message boundary at the current position. Calling
// EndMessage when nothing was written since the previous boundary is a
// no-op, so producers that may emit nothing can call it unconditionally.
func (b *Buffer) EndMessage() {
	last := 0
	if n := len(b.marks); n > 0 {
		last = b.marks[n-1]
	}
	if len(b.data) > last {
		b.marks = append(b.marks, len(b.data))
	}
}

// Messages returns the complete messages recorded in the buffer, in write
// order. Bytes written after the last boundary form a final message.
func (b *Buffer) Messages() [][]byte {
	if len(b.data) == 0 {
		return nil
	}
	var msgs [][]byte
	start := 0
	for _, end := range b.marks {
		msgs = append(msgs, b.data[start:end])
		start = end
	}
	if start < len(b.data) {
		msgs = append(msgs, b.data[start:])
	}
	return msgs
}
