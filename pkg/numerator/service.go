// Package numerator provides requisition auto-numbering.
// Numbers follow REQ<YY><MM><seq4> (e.g. REQ25110007): a monthly
// sequence, zero-padded to four digits, reset each month.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// SequenceSource allocates the next value of a year+month counter.
// Implementations must serialize the read-increment-write: either a
// store-level atomic increment (UPSERT ... RETURNING) or an advisory
// lock around the allocation.
type SequenceSource interface {
	NextSequence(ctx context.Context, year int, month time.Month) (int64, error)
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "REQ")
	Prefix string

	// PadWidth is the minimum sequence width (default 4)
	PadWidth int
}

// DefaultConfig returns the requisition numbering scheme.
func DefaultConfig() Config {
	return Config{
		Prefix:   "REQ",
		PadWidth: 4,
	}
}

// Service generates requisition numbers from a sequence source.
type Service struct {
	source SequenceSource
	cfg    Config
}

// New creates a numerator service.
func New(source SequenceSource, cfg Config) *Service {
	if cfg.Prefix == "" {
		cfg.Prefix = "REQ"
	}
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = 4
	}
	return &Service{source: source, cfg: cfg}
}

// Next allocates and formats the next number for the period's
// year+month scope. Numbers are unique and monotonically increasing
// within the scope as long as the source serializes allocation.
func (s *Service) Next(ctx context.Context, period time.Time) (string, error) {
	if s == nil || s.source == nil {
		return "", fmt.Errorf("numerator is not initialized")
	}

	num, err := s.source.NextSequence(ctx, period.Year(), period.Month())
	if err != nil {
		return "", fmt.Errorf("allocate sequence %d-%02d: %w", period.Year(), period.Month(), err)
	}
	return Format(s.cfg, period, num), nil
}

// Format renders a number without allocating.
func Format(cfg Config, period time.Time, num int64) string {
	return fmt.Sprintf("%s%s%0*d", cfg.Prefix, period.Format("0601"), cfg.PadWidth, num)
}

// Parse splits a formatted number into its period and sequence.
// Returns an error when the input does not match PREFIX+YYMM+seq.
func Parse(cfg Config, formatted string) (year int, month time.Month, seq int64, err error) {
	rest, ok := cutPrefix(formatted, cfg.Prefix)
	if !ok || len(rest) < 4+1 {
		return 0, 0, 0, fmt.Errorf("malformed number %q", formatted)
	}

	period, err := time.Parse("0601", rest[:4])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed period in %q: %w", formatted, err)
	}

	seq, err = strconv.ParseInt(rest[4:], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed sequence in %q: %w", formatted, err)
	}
	return period.Year(), period.Month(), seq, nil
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || s[:len(prefix)] != prefix {
		return s, false
	}
	return s[len(prefix):], true
}
