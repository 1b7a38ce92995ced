package subscribe

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/zpipe/internal/core/domain"
)

// ConsoleMarker replaces the receive counter on console output.
const ConsoleMarker = "*"

// Printer writes one line per message.
type Printer struct {
	w        io.Writer
	numbered bool
}

// NewFilePrinter returns a printer that labels lines with the receive
// counter.
func NewFilePrinter(w io.Writer) *Printer {
	return &Printer{w: w, numbered: true}
}

// NewConsolePrinter returns a printer that labels lines with
// ConsoleMarker.
func NewConsolePrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes m as "[label] topic => payload".
func (p *Printer) Print(m domain.Message) error {
	label := ConsoleMarker
	if p.numbered {
		label = strconv.FormatUint(m.Seq, 10)
	}
	_, err := fmt.Fprintf(p.w, "[%s] %s => %s\n", label, m.TopicDisplay(), m.PayloadDisplay())
	return err
}
