package terminal

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestInjectorType(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{
			name:   "answer gets terminator",
			answer: "Use PostgreSQL",
			want:   "Use PostgreSQL\r",
		},
		{
			name:   "newlines flattened to spaces",
			answer: "line one\nline two",
			want:   "line one line two\r",
		},
		{
			name:   "empty answer is just the terminator",
			answer: "",
			want:   "\r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			inj := NewInjector(&buf, 0)
			if err := inj.Type(context.Background(), tt.answer); err != nil {
				t.Fatalf("Type returned error: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Type(%q) wrote %q, want %q", tt.answer, got, tt.want)
			}
		})
	}
}

func TestInjectorTypeToken(t *testing.T) {
	var buf bytes.Buffer
	inj := NewInjector(&buf, 0)

	if err := inj.TypeToken(context.Background(), "1"); err != nil {
		t.Fatalf("TypeToken returned error: %v", err)
	}
	if got := buf.String(); got != "1\r" {
		t.Errorf("TypeToken(\"1\") wrote %q, want %q", got, "1\r")
	}

	buf.Reset()
	if err := inj.TypeToken(context.Background(), ""); err != nil {
		t.Fatalf("TypeToken returned error: %v", err)
	}
	if got := buf.String(); got != "\r" {
		t.Errorf("TypeToken(\"\") wrote %q, want %q", got, "\r")
	}
}

func TestInjectorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	inj := NewInjector(&buf, time.Second) // long delay so cancellation wins
	if err := inj.Type(ctx, "long answer"); err == nil {
		t.Error("Type with canceled context returned nil error")
	}
}
