//go:build integration

package postgres

// go test -tags=integration ./internal/repo/postgres -count=1

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/campusnet/internal/domain"
)

func TestPostgresStore_Append_List_Latest(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	// far-future timestamps keep this run's rows on top of older ones
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Microsecond)
	first := &domain.Attempt{
		Action:     domain.ActionLogin,
		Outcome:    domain.OutcomeFailed,
		Rounds:     2,
		Error:      "portal post: connection refused",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected ID to be set")
	}
	second := &domain.Attempt{
		Action:     domain.ActionLogin,
		Outcome:    domain.OutcomeSuccess,
		Rounds:     1,
		StartedAt:  start.Add(time.Minute),
		FinishedAt: start.Add(time.Minute + time.Second),
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}

	latest, err := store.Latest(ctx)
	if err != nil || latest == nil {
		t.Fatalf("Latest: %v %v", latest, err)
	}
	if latest.ID != second.ID || latest.Outcome != domain.OutcomeSuccess {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	list, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[1].ID != first.ID || list[1].Error == "" || list[1].Rounds != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if !list[1].StartedAt.Equal(first.StartedAt) {
		t.Fatalf("started_at mismatch: %v vs %v", list[1].StartedAt, first.StartedAt)
	}
}
