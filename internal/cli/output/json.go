package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders reports as indented JSON. Payload previews are
// written verbatim, so HTML-significant bytes such as '<' and '&' are
// not escaped.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
