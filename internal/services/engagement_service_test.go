package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
)

// counterRecorder tracks counter deltas per project so tests can assert that
// engagement changes and aggregate totals stay in lockstep.
type counterRecorder struct {
	mu     sync.Mutex
	likes  map[string]int
	shares map[string]int
	views  map[string]int
}

func newCounterRecorder() *counterRecorder {
	return &counterRecorder{
		likes:  make(map[string]int),
		shares: make(map[string]int),
		views:  make(map[string]int),
	}
}

func (c *counterRecorder) IncrementLikes(ctx context.Context, projectID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.likes[projectID] += delta
	return nil
}

func (c *counterRecorder) IncrementShares(ctx context.Context, projectID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shares[projectID] += delta
	return nil
}

func (c *counterRecorder) IncrementViews(ctx context.Context, projectID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[projectID] += delta
	return nil
}

func (c *counterRecorder) likeCount(projectID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likes[projectID]
}

func TestToggleOnThenOff(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	svc := NewEngagementService(repo, counters)
	ctx := context.Background()

	result, err := svc.Toggle(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !result.Active || !result.Created {
		t.Fatalf("toggle on = %+v, want active and created", result)
	}
	if counters.likeCount("p1") != 1 {
		t.Fatalf("like count = %d, want 1", counters.likeCount("p1"))
	}

	result, err = svc.Toggle(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if result.Active {
		t.Fatalf("toggle off = %+v, want inactive", result)
	}
	if counters.likeCount("p1") != 0 {
		t.Fatalf("like count = %d, want 0", counters.likeCount("p1"))
	}
}

func TestConcurrentTogglesKeepCounterConsistent(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	svc := NewEngagementService(repo, counters)
	ctx := context.Background()

	const toggles = 50
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, 7, "p1"); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	rows, err := repo.Find(ctx, 7, "p1", models.EngagementLike)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	// An even number of toggles must land back on zero rows and a zero
	// counter; the counter must always equal the row count.
	if len(rows) != 0 {
		t.Fatalf("row count = %d, want 0 after even toggle count", len(rows))
	}
	if got := counters.likeCount("p1"); got != len(rows) {
		t.Fatalf("like count = %d, rows = %d, want equal", got, len(rows))
	}
}

func TestOddConcurrentTogglesLeaveOneActiveLike(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	svc := NewEngagementService(repo, counters)
	ctx := context.Background()

	const toggles = 51
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, 7, "p1"); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	rows, err := repo.Find(ctx, 7, "p1", models.EngagementLike)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1 after odd toggle count", len(rows))
	}
	if got := counters.likeCount("p1"); got != 1 {
		t.Fatalf("like count = %d, want 1", got)
	}
}

func TestRecordOnceIsIdempotent(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	svc := NewEngagementService(repo, counters)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := svc.RecordOnce(ctx, 1, "p1", models.EngagementView)
		if err != nil {
			t.Fatalf("record view %d: %v", i, err)
		}
		if created := i == 0; result.Created != created {
			t.Fatalf("record view %d: created = %v, want %v", i, result.Created, created)
		}
	}

	counters.mu.Lock()
	views := counters.views["p1"]
	counters.mu.Unlock()
	if views != 1 {
		t.Fatalf("view count = %d, want 1 after repeated records", views)
	}
}

func TestRecordOnceRejectsLike(t *testing.T) {
	svc := NewEngagementService(repositories.NewInMemoryEngagementRepository(), newCounterRecorder())

	_, err := svc.RecordOnce(context.Background(), 1, "p1", models.EngagementLike)
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
}

func TestStatusHealsDuplicateRows(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	svc := NewEngagementService(repo, newCounterRecorder())
	ctx := context.Background()

	// Seed the duplicate rows a lost insert race would leave behind.
	now := time.Now().UTC()
	repo.Insert(models.Engagement{UserID: 1, ProjectID: "p1", Kind: models.EngagementLike, CreatedAt: now})
	repo.Insert(models.Engagement{UserID: 1, ProjectID: "p1", Kind: models.EngagementLike, CreatedAt: now.Add(time.Second)})

	status, err := svc.Status(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Liked || status.Shared {
		t.Fatalf("status = %+v, want liked only", status)
	}

	rows, err := repo.Find(ctx, 1, "p1", models.EngagementLike)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d, want 1 after healing", len(rows))
	}
}

func TestToggleAfterDuplicateRowsRemovesAll(t *testing.T) {
	repo := repositories.NewInMemoryEngagementRepository()
	counters := newCounterRecorder()
	svc := NewEngagementService(repo, counters)
	ctx := context.Background()

	repo.Insert(models.Engagement{UserID: 1, ProjectID: "p1", Kind: models.EngagementLike})
	repo.Insert(models.Engagement{UserID: 1, ProjectID: "p1", Kind: models.EngagementLike})

	result, err := svc.Toggle(ctx, 1, "p1")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Active {
		t.Fatalf("toggle = %+v, want inactive after clearing duplicates", result)
	}

	rows, err := repo.Find(ctx, 1, "p1", models.EngagementLike)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("row count = %d, want 0", len(rows))
	}
}
