package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt texts.
const (
	TopicPrompt   = "Enter topic to publish (Ctrl+C to exit):"
	MessagePrompt = "Enter messages to publish (Ctrl+C to exit):"
	AbortMessage  = "Aborted by user."
)

// OverwritePrompt returns the confirmation question for an existing
// output file.
func OverwritePrompt(path string) string {
	return fmt.Sprintf("Output file '%s' already exists. Overwrite? (y/N):", path)
}

// Console reads answers and lines from in and writes prompts to out.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a console.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Println writes a line to the console output.
func (c *Console) Println(msg string) {
	fmt.Fprintln(c.out, msg)
}

// Prompt prints msg on its own line and returns the next input line
// with surrounding whitespace trimmed. At end of input it returns
// whatever was read, and io.EOF only if nothing was.
func (c *Console) Prompt(msg string) (string, error) {
	c.Println(msg)

	line, err := c.readLine()
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks msg and reports whether the answer is "y" or "yes",
// case-insensitively. Anything else, including no answer, is no.
func (c *Console) Confirm(msg string) (bool, error) {
	ans, err := c.Prompt(msg)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Lines returns a reader over the remaining input. Each line is
// recorded in h when h is non-nil.
func (c *Console) Lines(h *History) *LineReader {
	return &LineReader{c: c, history: h}
}

// readLine returns the next line without its "\n" or "\r\n".
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}

// LineReader yields input lines verbatim, empty ones included.
type LineReader struct {
	c       *Console
	history *History
}

// Next returns the next line, or io.EOF when input ends.
func (r *LineReader) Next() (string, error) {
	line, err := r.c.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", io.EOF
	}
	if r.history != nil {
		r.history.Add(line)
	}
	return line, nil
}
