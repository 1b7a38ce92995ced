package output

import (
	"bytes"
	"testing"
)

type summaryRow struct{ format string }

func (s summaryRow) Table() *Table {
	t := NewTable("FIELD", "VALUE")
	t.AddRow("format", s.format)
	return t
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("#", "OFFSET", "PAYLOAD")
	tbl.AddRow("1", "9", "abc")
	tbl.AddRow("2", "24", "")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := "#  OFFSET  PAYLOAD\n1  9       abc\n2  24      -\n"
	if buf.String() != want {
		t.Errorf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestTable_NoHeaders(t *testing.T) {
	tbl := NewTable("A", "B")
	tbl.AddRow("x", "y")

	var buf bytes.Buffer
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, tbl); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "x  y\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTable_SanitizesCells(t *testing.T) {
	tbl := NewTable("PAYLOAD")
	tbl.AddRow("line1\nline2\tend")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if buf.String() != "PAYLOAD\nline1\\nline2\\tend\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTableFormatter_Tabular(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, summaryRow{format: "binary"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.String() != "FIELD   VALUE\nformat  binary\n" {
		t.Errorf("output = %q", buf.String())
	}
}
