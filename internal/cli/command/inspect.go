package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/cli/output"
	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/recordlog"
)

// InspectCommand returns the inspect command.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Describe a record-log or text log without publishing it",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format: table, json, yaml",
				Value:   string(output.FormatTable),
			},
			&cli.BoolFlag{
				Name:    "records",
				Aliases: []string{"r"},
				Usage:   "List every record",
			},
		},
		Action: inspectAction,
	}
}

// InspectReport is the result of inspect.
type InspectReport struct {
	Path    string            `json:"path" yaml:"path"`
	Summary recordlog.Summary `json:"summary" yaml:"summary"`
	Last    string            `json:"last,omitempty" yaml:"last,omitempty"`
	Records []RecordRow       `json:"records,omitempty" yaml:"records,omitempty"`
}

// RecordRow describes one record.
type RecordRow struct {
	Index     int    `json:"index" yaml:"index"`
	Offset    int64  `json:"offset" yaml:"offset"`
	Length    int    `json:"length" yaml:"length"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Murmur3   string `json:"murmur3" yaml:"murmur3"`
	Payload   string `json:"payload" yaml:"payload"`
}

func newRecordRow(index int, rec recordlog.Record, format recordlog.Format) RecordRow {
	row := RecordRow{
		Index:   index,
		Offset:  rec.Offset,
		Length:  len(rec.Payload),
		Murmur3: fmt.Sprintf("%08x", murmur3.Sum32(rec.Payload)),
		Payload: domain.Display(rec.Payload),
	}
	if format == recordlog.FormatBinary {
		row.Timestamp = rec.Time().UTC().Format(time.RFC3339Nano)
	}
	return row
}

// Table lays out the summary as field/value pairs.
func (r *InspectReport) Table() *output.Table {
	s := r.Summary
	t := output.NewTable("FIELD", "VALUE")
	t.AddRow("path", r.Path)
	t.AddRow("format", s.Format.String())
	if s.Header != nil {
		t.AddRow("active", strconv.FormatBool(s.Header.Active))
		t.AddRow("seq_lock", strconv.FormatInt(int64(s.Header.SeqLock), 10))
		t.AddRow("data_offset", strconv.FormatInt(int64(s.Header.DataOffset), 10))
	}
	t.AddRow("records", strconv.Itoa(s.Records))
	t.AddRow("payload_bytes", strconv.FormatInt(s.PayloadBytes, 10))
	t.AddRow("end_offset", strconv.FormatInt(s.EndOffset, 10))
	t.AddRow("last", r.Last)
	if s.Truncated != "" {
		t.AddRow("truncated", s.Truncated)
	}
	return t
}

// recordsTable lists the records, one row each.
func (r *InspectReport) recordsTable() *output.Table {
	t := output.NewTable("#", "OFFSET", "LENGTH", "TIMESTAMP", "MURMUR3", "PAYLOAD")
	for _, row := range r.Records {
		t.AddRow(
			strconv.Itoa(row.Index),
			strconv.FormatInt(row.Offset, 10),
			strconv.Itoa(row.Length),
			row.Timestamp,
			row.Murmur3,
			row.Payload,
		)
	}
	return t
}

func inspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("inspect requires exactly one FILE argument")
	}
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}

	report, err := inspectFile(c.Args().First(), c.Bool("records"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if format != output.FormatTable {
		return output.NewFormatter(format).Format(w, report)
	}

	if err := output.NewFormatter(format).Format(w, report); err != nil {
		return err
	}
	if c.Bool("records") {
		fmt.Fprintln(w)
		return report.recordsTable().Render(w)
	}
	return nil
}

// inspectFile summarizes the log at path, collecting record rows when
// withRecords is set.
func inspectFile(path string, withRecords bool) (*InspectReport, error) {
	l, err := recordlog.Open(path)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	report := &InspectReport{Path: path}
	var visit func(recordlog.Record) error
	if withRecords {
		format := l.Format()
		visit = func(rec recordlog.Record) error {
			report.Records = append(report.Records, newRecordRow(len(report.Records)+1, rec, format))
			return nil
		}
	}

	report.Summary, err = recordlog.Summarize(l, visit)
	if err != nil {
		return nil, err
	}
	if report.Summary.Records > 0 {
		report.Last = domain.Display(report.Summary.Last)
	}
	return report, nil
}
