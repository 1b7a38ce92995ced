package publish

import (
	"fmt"
	"strings"

	"github.com/yndnr/zpipe/internal/core/domain"
)

// TruncatedPolicy decides what replay does with a truncated record.
type TruncatedPolicy string

const (
	// PolicySkip logs the truncated record, drops it and ends replay
	// normally.
	PolicySkip TruncatedPolicy = "skip"
	// PolicyFail aborts replay with the truncation error.
	PolicyFail TruncatedPolicy = "fail"
)

// ParseTruncatedPolicy parses "skip" or "fail", case-insensitively.
// The empty string selects PolicySkip.
func ParseTruncatedPolicy(s string) (TruncatedPolicy, error) {
	switch TruncatedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyFail:
		return PolicyFail, nil
	default:
		return "", domain.ErrInvalidConfig.WithDetails(
			fmt.Sprintf("on_truncated must be skip or fail, got %q", s))
	}
}
