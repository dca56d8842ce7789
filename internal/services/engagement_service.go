package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
)

// ProjectCounters applies engagement-counter deltas to a project's aggregate
// totals. Satisfied by repositories.ProjectRepository.
type ProjectCounters interface {
	IncrementLikes(ctx context.Context, projectID string, delta int) error
	IncrementShares(ctx context.Context, projectID string, delta int) error
	IncrementViews(ctx context.Context, projectID string, delta int) error
}

// EngagementService keeps per-user engagement state correct under concurrent
// toggles. The striped key lock plus the repository's conditional insert
// guarantee at most one active engagement per (user, project, kind).
type EngagementService struct {
	engagements repositories.EngagementRepository
	counters    ProjectCounters
	locks       keyMutex
}

// NewEngagementService creates a new EngagementService
func NewEngagementService(engagements repositories.EngagementRepository, counters ProjectCounters) *EngagementService {
	return &EngagementService{engagements: engagements, counters: counters}
}

func engagementKey(userID uint, projectID string) string {
	return fmt.Sprintf("%d|%s", userID, projectID)
}

// Toggle flips the LIKE state for (user, project). If an active like exists
// it is removed and the project's like counter decremented; otherwise a like
// is created and the counter incremented. There is no business-rejection
// case: the call succeeds or fails on I/O only.
func (s *EngagementService) Toggle(ctx context.Context, userID uint, projectID string) (models.EngagementResult, error) {
	mu := s.locks.stripe(engagementKey(userID, projectID))
	mu.Lock()
	defer mu.Unlock()

	rows, err := s.engagements.Find(ctx, userID, projectID, models.EngagementLike)
	if err != nil {
		return models.EngagementResult{}, err
	}

	if len(rows) > 0 {
		if len(rows) > 1 {
			log.Printf("anomaly: %d duplicate LIKE engagements for user %d project %s, removing all", len(rows), userID, projectID)
		}
		if _, err := s.engagements.Delete(ctx, userID, projectID, models.EngagementLike); err != nil {
			return models.EngagementResult{}, err
		}
		if err := s.counters.IncrementLikes(ctx, projectID, -1); err != nil {
			return models.EngagementResult{}, err
		}
		return models.EngagementResult{Active: false}, nil
	}

	created, err := s.engagements.CreateIfAbsent(ctx, &models.Engagement{
		UserID:    userID,
		ProjectID: projectID,
		Kind:      models.EngagementLike,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return models.EngagementResult{}, err
	}
	if created {
		if err := s.counters.IncrementLikes(ctx, projectID, 1); err != nil {
			return models.EngagementResult{}, err
		}
	}
	// created == false means another writer won the insert; its counter
	// delta already applies, so the like is active either way.
	return models.EngagementResult{Active: true, Created: created}, nil
}

// RecordOnce records a SHARE or VIEW engagement at most once per
// (user, project). The counter increments only on the first call.
func (s *EngagementService) RecordOnce(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) (models.EngagementResult, error) {
	if kind != models.EngagementShare && kind != models.EngagementView {
		return models.EngagementResult{}, ErrInvalidKind
	}

	mu := s.locks.stripe(engagementKey(userID, projectID))
	mu.Lock()
	defer mu.Unlock()

	created, err := s.engagements.CreateIfAbsent(ctx, &models.Engagement{
		UserID:    userID,
		ProjectID: projectID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return models.EngagementResult{}, err
	}
	if created {
		switch kind {
		case models.EngagementShare:
			err = s.counters.IncrementShares(ctx, projectID, 1)
		case models.EngagementView:
			err = s.counters.IncrementViews(ctx, projectID, 1)
		}
		if err != nil {
			return models.EngagementResult{}, err
		}
	}
	return models.EngagementResult{Created: created}, nil
}

// Status reports whether the user has liked and shared the project. Duplicate
// rows left behind by a lost race are healed here: the oldest row is kept,
// the rest deleted, and the anomaly logged. Duplicates are never surfaced as
// an error.
func (s *EngagementService) Status(ctx context.Context, userID uint, projectID string) (models.EngagementStatus, error) {
	liked, err := s.existsHealed(ctx, userID, projectID, models.EngagementLike)
	if err != nil {
		return models.EngagementStatus{}, err
	}
	shared, err := s.existsHealed(ctx, userID, projectID, models.EngagementShare)
	if err != nil {
		return models.EngagementStatus{}, err
	}
	return models.EngagementStatus{Liked: liked, Shared: shared}, nil
}

func (s *EngagementService) existsHealed(ctx context.Context, userID uint, projectID string, kind models.EngagementKind) (bool, error) {
	rows, err := s.engagements.Find(ctx, userID, projectID, kind)
	if err != nil {
		return false, err
	}
	if len(rows) > 1 {
		log.Printf("anomaly: %d duplicate %s engagements for user %d project %s, healing", len(rows), kind, userID, projectID)
		for _, extra := range rows[1:] {
			if err := s.engagements.DeleteByID(ctx, extra.ID); err != nil {
				return true, err
			}
		}
	}
	return len(rows) > 0, nil
}
