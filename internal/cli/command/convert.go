package command

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/zpipe/internal/core/domain"
	"github.com/yndnr/zpipe/internal/publish"
	"github.com/yndnr/zpipe/internal/recordlog"
	"github.com/yndnr/zpipe/internal/telemetry/logger"
)

// ConvertCommand returns the convert command.
func ConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Write a text or binary log as a binary record-log",
		ArgsUsage: "SRC DST",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite DST if it exists",
			},
			&cli.StringFlag{
				Name:  "on-truncated",
				Usage: "Truncated record handling: skip or fail",
				Value: string(publish.PolicySkip),
			},
		},
		Action: convertAction,
	}
}

// ConvertResult is the outcome of convert.
type ConvertResult struct {
	Format    recordlog.Format
	Records   int
	Skipped   int
	Truncated int
	Bytes     int64
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("convert requires SRC and DST arguments")
	}
	src, dst := c.Args().Get(0), c.Args().Get(1)

	policy, err := publish.ParseTruncatedPolicy(c.String("on-truncated"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(dst); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", dst)
	}

	res, err := convertFile(src, dst, policy, time.Now)
	if err != nil {
		return err
	}

	logger.Default().Debug("converted", "source", src, "records", res.Records)
	fmt.Fprintf(c.App.Writer, "%s (%s) -> %s: %d records, %d bytes\n",
		src, res.Format, dst, res.Records, res.Bytes)
	return nil
}

// convertFile copies every record of src into a new binary log at dst.
// Empty text lines are dropped, as replay drops them. Text lines carry
// no timestamp and are stamped with now. A truncated record ends the
// copy; under PolicyFail it is also returned as an error and dst keeps
// the records written before it.
func convertFile(src, dst string, policy publish.TruncatedPolicy, now func() time.Time) (ConvertResult, error) {
	if sameFile(src, dst) {
		return ConvertResult{}, domain.ErrInvalidConfig.WithDetails(
			fmt.Sprintf("convert cannot write %s onto itself", src))
	}

	l, err := recordlog.Open(src)
	if err != nil {
		return ConvertResult{}, err
	}
	defer l.Close()

	res := ConvertResult{Format: l.Format()}

	w, err := recordlog.Create(dst)
	if err != nil {
		return res, err
	}

	if err := copyRecords(l, w, &res, policy, now); err != nil {
		w.Close()
		return res, err
	}

	res.Bytes = w.Offset()
	return res, w.Close()
}

// sameFile reports whether both paths exist and name the same file,
// links included.
func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func copyRecords(l recordlog.Log, w *recordlog.Writer, res *ConvertResult, policy publish.TruncatedPolicy, now func() time.Time) error {
	for {
		rec, err := l.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if !recordlog.IsTruncated(err) {
				return err
			}
			res.Truncated++
			if policy == publish.PolicyFail {
				return err
			}
			logger.Default().Warn("skipping truncated record", "offset", rec.Offset, "error", err)
			continue
		}

		if res.Format == recordlog.FormatText && len(rec.Payload) == 0 {
			res.Skipped++
			continue
		}
		ts := rec.Time()
		if res.Format == recordlog.FormatText {
			ts = now()
		}
		if err := w.Append(rec.Payload, ts); err != nil {
			return err
		}
		res.Records++
	}
}
