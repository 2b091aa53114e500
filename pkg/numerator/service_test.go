package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockSource simulates an atomic per-month counter.
type mockSource struct {
	mu   sync.Mutex
	seqs map[string]int64
	err  error
}

func newMockSource() *mockSource {
	return &mockSource{seqs: make(map[string]int64)}
}

func (m *mockSource) NextSequence(ctx context.Context, year int, month time.Month) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	key := fmt.Sprintf("%04d-%02d", year, month)
	m.seqs[key]++
	return m.seqs[key], nil
}

func TestNext_FormatAndIncrement(t *testing.T) {
	svc := New(newMockSource(), DefaultConfig())
	ctx := context.Background()
	period := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)

	num, err := svc.Next(ctx, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "REQ25110001" {
		t.Errorf("expected REQ25110001, got %s", num)
	}

	num, err = svc.Next(ctx, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != "REQ25110002" {
		t.Errorf("expected REQ25110002, got %s", num)
	}
}

func TestNext_MonthlyReset(t *testing.T) {
	svc := New(newMockSource(), DefaultConfig())
	ctx := context.Background()

	nov := time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Next(ctx, nov); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	num, err := svc.Next(ctx, dec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// December starts its own sequence.
	if num != "REQ25120001" {
		t.Errorf("expected REQ25120001, got %s", num)
	}
}

func TestFormat_PadsSequence(t *testing.T) {
	period := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	if got := Format(DefaultConfig(), period, 7); got != "REQ25110007" {
		t.Errorf("expected REQ25110007, got %s", got)
	}
	if got := Format(DefaultConfig(), period, 12345); got != "REQ251112345" {
		t.Errorf("expected REQ251112345, got %s", got)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	year, month, seq, err := Parse(DefaultConfig(), "REQ25110007")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if year != 2025 || month != time.November || seq != 7 {
		t.Errorf("got %d-%02d seq %d", year, month, seq)
	}

	if _, _, _, err := Parse(DefaultConfig(), "INV25110007"); err == nil {
		t.Error("expected error for wrong prefix")
	}
	if _, _, _, err := Parse(DefaultConfig(), "REQ"); err == nil {
		t.Error("expected error for truncated number")
	}
}
