package repository

import (
	"context"
	"database/sql"
	"fmt"

	"rentacar/internal/db"
	apperr "rentacar/internal/errors"
)

type ConsultationRepository struct {
	DB *sql.DB
}

func NewConsultationRepository(database *sql.DB) *ConsultationRepository {
	return &ConsultationRepository{DB: database}
}

func (r *ConsultationRepository) Create(ctx context.Context, c *db.Consultation) error {
	query := `
		INSERT INTO consultations
		(consultation_number, customer_name, customer_phone, customer_email,
		 subject, content, status, priority,
		 rental_start_date, rental_end_date, preferred_vehicle, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		c.ConsultationNumber, c.CustomerName, c.CustomerPhone, c.CustomerEmail,
		c.Subject, c.Content, c.Status, c.Priority,
		c.RentalStartDate, c.RentalEndDate, nullIfEmpty(c.PreferredVehicle), c.IsRead,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting consultation: %w", err)
	}
	return nil
}

// List returns consultations newest first. unreadOnly narrows to the ones an
// admin has not opened yet.
func (r *ConsultationRepository) List(ctx context.Context, unreadOnly bool) ([]db.Consultation, error) {
	query := `
		SELECT id, consultation_number, customer_name, customer_phone, customer_email,
		       subject, content, status, priority,
		       rental_start_date, rental_end_date,
		       COALESCE(preferred_vehicle, ''), COALESCE(admin_memo, ''), is_read,
		       created_at, updated_at
		FROM consultations
		WHERE ($1 = false OR is_read = false)
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("error querying consultations: %w", err)
	}
	defer rows.Close()

	var consultations []db.Consultation
	for rows.Next() {
		var c db.Consultation
		err := rows.Scan(&c.ID, &c.ConsultationNumber, &c.CustomerName, &c.CustomerPhone, &c.CustomerEmail,
			&c.Subject, &c.Content, &c.Status, &c.Priority,
			&c.RentalStartDate, &c.RentalEndDate,
			&c.PreferredVehicle, &c.AdminMemo, &c.IsRead,
			&c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning consultation: %w", err)
		}
		consultations = append(consultations, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating consultations: %w", err)
	}
	return consultations, nil
}

func (r *ConsultationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE consultations SET is_read = true, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking consultation read: %w", err)
	}
	return requireRow(result)
}

func (r *ConsultationRepository) UpdateStatus(ctx context.Context, id, status, adminMemo string) error {
	query := `
		UPDATE consultations
		SET status = $2,
		    admin_memo = CASE WHEN $3 = '' THEN admin_memo ELSE $3 END,
		    updated_at = NOW()
		WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, status, adminMemo)
	if err != nil {
		return fmt.Errorf("error updating consultation status: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
