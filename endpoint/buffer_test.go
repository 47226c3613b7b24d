package endpoint

import (
	"testing"
)

func TestBuffer_Write(t *testing.T) {
	var b Buffer

	n, err := b.Write([]byte("abc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}

	b.WriteString("def")
	if err := b.WriteByte('!'); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := string(b.Bytes()); got != "abcdef!" {
		t.Errorf("Bytes() = %q, want %q", got, "abcdef!")
	}
	if b.Len() != 7 {
		t.Errorf("Len() = %d, want 7", b.Len())
	}
}

func TestBuffer_AppendJSON(t *testing.T) {
	var b Buffer

	if err := b.AppendJSON(map[string]int{"a": 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(b.Bytes()); got != `{"a":1}` {
		t.Errorf("Bytes() = %s, want {\"a\":1}", got)
	}

	if err := b.AppendJSON(func() {}); err == nil {
		t.Error("expected error for unmarshalable value")
	}
	if got := string(b.Bytes()); got != `{"a":1}` {
		t.Errorf("buffer changed on failed append: %s", got)
	}
}

func TestBuffer_Messages(t *testing.T) {
	t.Run("empty buffer has no messages", func(t *testing.T) {
		var b Buffer
		if msgs := b.Messages(); msgs != nil {
			t.Errorf("Messages() = %v, want nil", msgs)
		}
	})

	t.Run("single unterminated message", func(t *testing.T) {
		var b Buffer
		b.WriteString("one")

		msgs := b.Messages()
		if len(msgs) != 1 || string(msgs[0]) != "one" {
			t.Errorf("Messages() = %q, want [one]", msgs)
		}
	})

	t.Run("boundaries split messages", func(t *testing.T) {
		var b Buffer
		b.WriteString("one")
		b.EndMessage()
		b.WriteString("two")
		b.EndMessage()

		msgs := b.Messages()
		if len(msgs) != 2 {
			t.Fatalf("got %d messages, want 2", len(msgs))
		}
		if string(msgs[0]) != "one" || string(msgs[1]) != "two" {
			t.Errorf("Messages() = %q", msgs)
		}
	})

	t.Run("EndMessage without growth is a no-op", func(t *testing.T) {
		var b Buffer
		b.EndMessage()
		b.WriteString("one")
		b.EndMessage()
		b.EndMessage()
		b.WriteString("two")

		msgs := b.Messages()
		if len(msgs) != 2 {
			t.Fatalf("got %d messages, want 2", len(msgs))
		}
		if string(msgs[0]) != "one" || string(msgs[1]) != "two" {
			t.Errorf("Messages() = %q", msgs)
		}
	})
}

func TestBuffer_Reset(t *testing.T) {
	var b Buffer
	b.WriteString("one")
	b.EndMessage()
	b.Reset()

	if b.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", b.Len())
	}
	if msgs := b.Messages(); msgs != nil {
		t.Errorf("Messages() = %v after Reset, want nil", msgs)
	}
}
