package queue

import (
	"math/rand"
	"strconv"
	"testing"

	"bot-dispatch/internal/domain"
)

func newJob(id string, p domain.Priority) *domain.Job {
	return &domain.Job{ID: domain.JobID(id), Priority: p, Status: domain.JobStatusPending}
}

func ids(q []*domain.Job) []domain.JobID {
	out := make([]domain.JobID, len(q))
	for i, j := range q {
		out[i] = j.ID
	}
	return out
}

func assertOrder(t *testing.T, q []*domain.Job, want ...domain.JobID) {
	t.Helper()
	got := ids(q)
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestInsertNormalAppends(t *testing.T) {
	var q []*domain.Job
	q = Insert(q, newJob("O-1", domain.PriorityNormal))
	q = Insert(q, newJob("O-2", domain.PriorityNormal))
	q = Insert(q, newJob("O-3", domain.PriorityNormal))

	assertOrder(t, q, "O-1", "O-2", "O-3")
}

func TestInsertHighGoesToFrontWhenNoHigh(t *testing.T) {
	q := []*domain.Job{newJob("O-1", domain.PriorityNormal), newJob("O-2", domain.PriorityNormal)}
	q = Insert(q, newJob("VIP-1", domain.PriorityHigh))

	assertOrder(t, q, "VIP-1", "O-1", "O-2")
}

func TestInsertHighAfterLastHigh(t *testing.T) {
	var q []*domain.Job
	q = Insert(q, newJob("O-1", domain.PriorityNormal))
	q = Insert(q, newJob("VIP-1", domain.PriorityHigh))
	q = Insert(q, newJob("O-2", domain.PriorityNormal))
	q = Insert(q, newJob("VIP-2", domain.PriorityHigh))
	q = Insert(q, newJob("VIP-3", domain.PriorityHigh))

	assertOrder(t, q, "VIP-1", "VIP-2", "VIP-3", "O-1", "O-2")
}

func TestInsertSkipsNonPendingEntries(t *testing.T) {
	done := newJob("VIP-1", domain.PriorityHigh)
	done.Status = domain.JobStatusAssigned
	q := []*domain.Job{newJob("O-1", domain.PriorityNormal), done}

	q = Insert(q, newJob("VIP-2", domain.PriorityHigh))

	assertOrder(t, q, "VIP-2", "O-1", "VIP-1")
}

func TestInsertDoesNotModifyInput(t *testing.T) {
	q := make([]*domain.Job, 0, 8)
	q = append(q, newJob("O-1", domain.PriorityNormal), newJob("O-2", domain.PriorityNormal))

	_ = Insert(q, newJob("VIP-1", domain.PriorityHigh))

	assertOrder(t, q, "O-1", "O-2")
}

func TestInsertRandomInterleavingKeepsClassesFIFO(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		var q []*domain.Job
		var highs, normals []domain.JobID
		for i := 0; i < 40; i++ {
			if rng.Intn(3) == 0 {
				j := newJob("VIP-"+strconv.Itoa(len(highs)+1), domain.PriorityHigh)
				highs = append(highs, j.ID)
				q = Insert(q, j)
			} else {
				j := newJob("O-"+strconv.Itoa(len(normals)+1), domain.PriorityNormal)
				normals = append(normals, j.ID)
				q = Insert(q, j)
			}
		}
		assertOrder(t, q, append(highs, normals...)...)
	}
}

func TestPosition(t *testing.T) {
	q := []*domain.Job{
		newJob("VIP-1", domain.PriorityHigh),
		newJob("O-1", domain.PriorityNormal),
		newJob("O-2", domain.PriorityNormal),
	}

	if got := Position(q, "O-1"); got != 1 {
		t.Errorf("Position(O-1) = %d, want 1", got)
	}
	if got := Position(q, "O-9"); got != -1 {
		t.Errorf("Position(O-9) = %d, want -1", got)
	}
}
