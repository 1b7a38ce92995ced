package subscribe

import (
	"bytes"
	"testing"

	"github.com/yndnr/zpipe/internal/core/domain"
)

func TestPrinter(t *testing.T) {
	tests := []struct {
		name     string
		newPrint func(*bytes.Buffer) *Printer
		msgs     []domain.Message
		want     string
	}{
		{
			name:     "file lines are numbered",
			newPrint: func(b *bytes.Buffer) *Printer { return NewFilePrinter(b) },
			msgs: []domain.Message{
				domain.NewMessage([]byte("news"), []byte("hello"), 1),
				domain.NewMessage([]byte("news"), []byte{0xDE, 0xAD}, 2),
			},
			want: "[1] news => hello\n[2] news => dead\n",
		},
		{
			name:     "console lines are marked",
			newPrint: func(b *bytes.Buffer) *Printer { return NewConsolePrinter(b) },
			msgs:     []domain.Message{domain.NewMessage([]byte{0xFF}, []byte("x"), 42)},
			want:     "[*] ff => x\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := tt.newPrint(&buf)
			for _, m := range tt.msgs {
				if err := p.Print(m); err != nil {
					t.Fatalf("Print: %v", err)
				}
			}
			if buf.String() != tt.want {
				t.Fatalf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}
