package etcd

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"bot-dispatch/internal/domain"
)

func TestPageBounds(t *testing.T) {
	tests := []struct {
		page, pageSize int
		start, end     int
	}{
		{page: 1, pageSize: 10, start: 0, end: 10},
		{page: 3, pageSize: 2, start: 4, end: 6},
		{page: 0, pageSize: 5, start: 0, end: 5},
		{page: -2, pageSize: 5, start: 0, end: 5},
		{page: 2, pageSize: 0, start: 0, end: 0},
		{page: 1, pageSize: -1, start: 0, end: 0},
	}
	for _, tt := range tests {
		start, end := pageBounds(tt.page, tt.pageSize)
		if start != tt.start || end != tt.end {
			t.Errorf("pageBounds(%d, %d) = (%d, %d), want (%d, %d)",
				tt.page, tt.pageSize, start, end, tt.start, tt.end)
		}
	}
}

func completion(n int) *domain.CompletionRecord {
	at := time.Date(2024, 1, 1, 0, 0, n, 0, time.UTC)
	return &domain.CompletionRecord{
		ID:          "rec-" + strconv.Itoa(n),
		OrderID:     domain.JobID("O-" + strconv.Itoa(n)),
		Priority:    domain.PriorityNormal,
		BotID:       1,
		SubmittedAt: at.Add(-10 * time.Second),
		AssignedAt:  at.Add(-10 * time.Second),
		CompletedAt: at,
	}
}

func listIDs(t *testing.T, repo domain.CompletionRepository, page, pageSize int) []domain.JobID {
	t.Helper()
	records, err := repo.List(context.Background(), page, pageSize)
	if err != nil {
		t.Fatalf("List(%d, %d): %v", page, pageSize, err)
	}
	out := make([]domain.JobID, len(records))
	for i, r := range records {
		out[i] = r.OrderID
	}
	return out
}

func equalIDs(got []domain.JobID, want ...domain.JobID) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestEtcdCompletionRepository(t *testing.T) {
	repo := NewEtcdCompletionRepository(newTestClient(t), discardLogger())
	ctx := context.Background()

	// Saved out of completion order.
	for _, n := range []int{2, 5, 1, 4, 3} {
		if err := repo.Save(ctx, completion(n)); err != nil {
			t.Fatalf("Save(%d): %v", n, err)
		}
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(ctx, "O-4")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != "rec-4" || !got.CompletedAt.Equal(completion(4).CompletedAt) {
			t.Errorf("Get = %+v", got)
		}
		if _, err := repo.Get(ctx, "O-9"); !errors.Is(err, domain.ErrJobNotFound) {
			t.Errorf("Get(O-9) error = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("newest first with paging", func(t *testing.T) {
		if got := listIDs(t, repo, 1, 2); !equalIDs(got, "O-5", "O-4") {
			t.Errorf("page 1 = %v, want [O-5 O-4]", got)
		}
		if got := listIDs(t, repo, 2, 2); !equalIDs(got, "O-3", "O-2") {
			t.Errorf("page 2 = %v, want [O-3 O-2]", got)
		}
		if got := listIDs(t, repo, 3, 2); !equalIDs(got, "O-1") {
			t.Errorf("page 3 = %v, want [O-1]", got)
		}
		if got := listIDs(t, repo, 4, 2); len(got) != 0 {
			t.Errorf("page 4 = %v, want empty", got)
		}
	})

	t.Run("degenerate paging", func(t *testing.T) {
		if got := listIDs(t, repo, 0, 2); !equalIDs(got, "O-5", "O-4") {
			t.Errorf("page 0 = %v, want the first page", got)
		}
		if got := listIDs(t, repo, 1, 0); len(got) != 0 {
			t.Errorf("pageSize 0 = %v, want empty", got)
		}
	})

	t.Run("rejects invalid record", func(t *testing.T) {
		bad := completion(6)
		bad.BotID = 0
		if err := repo.Save(ctx, bad); err == nil {
			t.Fatal("Save accepted a record without a bot")
		}
		if _, err := repo.Get(ctx, "O-6"); !errors.Is(err, domain.ErrJobNotFound) {
			t.Errorf("invalid record was stored: Get error = %v", err)
		}
	})
}
