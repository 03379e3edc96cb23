package store

import (
	"context"
	"errors"
	"testing"

	orchestration "github.com/hanagata/kioskd/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	return s
}

func TestWriteAndListPendingSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WritePendingSummary(ctx, orchestration.SessionSummary{
		Summary: "Visitor asked about opening hours and ticket prices.",
		Topics:  []string{"hours", "tickets"},
	}); err != nil {
		t.Fatalf("failed to write summary: %v", err)
	}

	summaries, err := s.ListPendingSummaries(ctx)
	if err != nil {
		t.Fatalf("failed to list summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].SummaryID == "" {
		t.Fatal("expected summary id to be assigned")
	}
	if summaries[0].Summary != "Visitor asked about opening hours and ticket prices." {
		t.Fatalf("unexpected summary text: %q", summaries[0].Summary)
	}
	if len(summaries[0].Topics) != 2 || summaries[0].Topics[0] != "hours" {
		t.Fatalf("topics did not round-trip: %v", summaries[0].Topics)
	}
}

func TestDismissSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WritePendingSummary(ctx, orchestration.SessionSummary{Summary: "short visit"}); err != nil {
		t.Fatalf("failed to write summary: %v", err)
	}
	summaries, err := s.ListPendingSummaries(ctx)
	if err != nil {
		t.Fatalf("failed to list summaries: %v", err)
	}

	if err := s.DismissSummary(ctx, summaries[0].SummaryID); err != nil {
		t.Fatalf("failed to dismiss summary: %v", err)
	}

	remaining, err := s.ListPendingSummaries(ctx)
	if err != nil {
		t.Fatalf("failed to list summaries: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no summaries after dismissal, got %d", len(remaining))
	}

	if err := s.DismissSummary(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
