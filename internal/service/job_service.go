package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"rentacar/internal/db"
	"rentacar/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ActivateStartedReservations moves confirmed reservations whose pickup date
// has arrived to active.
func (s *JobService) ActivateStartedReservations(ctx context.Context) error {
	ids, err := s.Repo.GetConfirmedReservationIDsAtPickup(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed reservations at pickup: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	log.Printf("Cron Job: marking %d reservations as 'active'", len(ids))
	if err := s.Repo.UpdateReservationStatuses(ctx, ids, db.StatusActive); err != nil {
		return fmt.Errorf("cron job: failed to activate reservations: %w", err)
	}
	return nil
}

// CompleteFinishedReservations moves active reservations past their return
// date to completed.
func (s *JobService) CompleteFinishedReservations(ctx context.Context) error {
	ids, err := s.Repo.GetActiveReservationIDsPastReturn(ctx)
	if err != nil {
		return fmt.Errorf("cron job: failed to get active reservations past return: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	log.Printf("Cron Job: marking %d reservations as 'completed'", len(ids))
	if err := s.Repo.UpdateReservationStatuses(ctx, ids, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron job: failed to complete reservations: %w", err)
	}
	return nil
}

// DeleteOldPendingReservations drops pending reservations the admin never
// confirmed, freeing their dates for other guests.
func (s *JobService) DeleteOldPendingReservations(ctx context.Context, before time.Time) (int64, error) {
	return s.Repo.DeletePendingReservationsOlderThan(ctx, before)
}
