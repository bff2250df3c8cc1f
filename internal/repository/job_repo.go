package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetConfirmedReservationIDsAtPickup returns confirmed reservations whose
// rental period has started.
func (r *JobRepository) GetConfirmedReservationIDsAtPickup(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT id FROM reservations WHERE status = 'confirmed' AND start_date <= CURRENT_DATE`)
}

// GetActiveReservationIDsPastReturn returns active reservations whose return
// date has passed.
func (r *JobRepository) GetActiveReservationIDsPastReturn(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT id FROM reservations WHERE status = 'active' AND end_date < CURRENT_DATE`)
}

func (r *JobRepository) queryIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying reservation ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning reservation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateReservationStatuses moves a batch of reservations to newStatus.
func (r *JobRepository) UpdateReservationStatuses(ctx context.Context, ids []string, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.ExecContext(ctx, query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating reservation statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d reservations to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// DeletePendingReservationsOlderThan removes pending reservations the admin
// never confirmed, freeing their dates.
func (r *JobRepository) DeletePendingReservationsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE status = 'pending' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error deleting stale pending reservations: %w", err)
	}
	return result.RowsAffected()
}
