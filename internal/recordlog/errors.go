package recordlog

import (
	"errors"
	"fmt"

	"github.com/yndnr/zpipe/internal/core/domain"
)

// Errors for record-log operations.
var (
	// ErrTruncatedRecord matches every *TruncatedRecordError via errors.Is.
	ErrTruncatedRecord = domain.ErrTruncatedRecord

	// ErrInvalidLength is the cause of a TruncatedRecordError raised for a negative data_len.
	ErrInvalidLength = errors.New("recordlog: negative data length")

	// ErrLogFull is returned by Writer.Append when data_offset would overflow int32.
	ErrLogFull = errors.New("recordlog: log exceeds maximum data offset")

	// ErrWriterClosed is returned when appending to a closed Writer.
	ErrWriterClosed = errors.New("recordlog: writer is closed")
)

// Field names the part of the format a truncation was detected in.
type Field string

const (
	FieldHeader    Field = "header"
	FieldLength    Field = "data_len"
	FieldPayload   Field = "payload"
	FieldTimestamp Field = "timestamp"
)

// TruncatedRecordError reports a fixed-size field or payload that ended
// before its declared size. The reader is exhausted once it is returned.
type TruncatedRecordError struct {
	Offset int64 // start offset of the record (0 for the header)
	Field  Field
	Want   int64 // declared size in bytes
	Got    int64 // bytes actually available
	Err    error
}

// Error implements the error interface.
func (e *TruncatedRecordError) Error() string {
	if errors.Is(e.Err, ErrInvalidLength) {
		return fmt.Sprintf("recordlog: invalid %s %d at offset %d", e.Field, e.Want, e.Offset)
	}
	return fmt.Sprintf("recordlog: truncated %s at offset %d: want %d bytes, got %d",
		e.Field, e.Offset, e.Want, e.Got)
}

// Unwrap returns the underlying read error.
func (e *TruncatedRecordError) Unwrap() error {
	return e.Err
}

// Is matches ErrTruncatedRecord.
func (e *TruncatedRecordError) Is(target error) bool {
	return errors.Is(ErrTruncatedRecord, target)
}

// IsTruncated reports whether err is a record truncation.
func IsTruncated(err error) bool {
	var te *TruncatedRecordError
	return errors.As(err, &te)
}
