package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// overlapCondition returns the SQL comparison for the interval-intersection
// test. The inclusive form treats a shared boundary day as a conflict; the
// strict form allows same-day turnover.
func overlapCondition(sameDayTurnover bool) string {
	if sameDayTurnover {
		return "r.start_date < $3 AND r.end_date > $2"
	}
	return "r.start_date <= $3 AND r.end_date >= $2"
}

// CountBlockingOverlaps counts pending/confirmed reservations for the vehicle
// whose stored range intersects [start, end].
func (r *ReservationRepository) CountBlockingOverlaps(ctx context.Context, vehicleID string, start, end time.Time, sameDayTurnover bool) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM reservations r
		WHERE r.vehicle_id = $1
		  AND r.status IN ('pending', 'confirmed')
		  AND %s`, overlapCondition(sameDayTurnover))

	var count int
	err := r.DB.QueryRowContext(ctx, query, vehicleID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping reservations: %w", err)
	}
	return count, nil
}

// CreateReservation inserts a new reservation after re-checking availability
// inside a transaction that holds the vehicle row lock. Two concurrent
// bookings for overlapping windows serialize on the lock and the loser gets
// ErrDateConflict instead of a silent double booking.
func (r *ReservationRepository) CreateReservation(ctx context.Context, res *db.Reservation, sameDayTurnover bool) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting reservation transaction: %w", err)
	}
	defer tx.Rollback()

	var vehicleStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM vehicles WHERE id = $1 FOR UPDATE`, res.VehicleID).Scan(&vehicleStatus)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("error locking vehicle row: %w", err)
	}
	if vehicleStatus == "unavailable" {
		return apperr.ErrDateConflict
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM reservations r
		WHERE r.vehicle_id = $1
		  AND r.status IN ('pending', 'confirmed')
		  AND %s`, overlapCondition(sameDayTurnover))

	var overlapping int
	if err := tx.QueryRowContext(ctx, countQuery, res.VehicleID, res.StartDate, res.EndDate).Scan(&overlapping); err != nil {
		return fmt.Errorf("error re-checking availability: %w", err)
	}
	if overlapping > 0 {
		return apperr.ErrDateConflict
	}

	insert := `
		INSERT INTO reservations
		(reservation_number, vehicle_id, guest_name, guest_phone, guest_email,
		 start_date, end_date, start_time, end_time,
		 pickup_location, return_location, total_amount, status, payment_status, notes,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, insert,
		res.ReservationNumber,
		res.VehicleID,
		res.GuestName,
		res.GuestPhone,
		res.GuestEmail,
		res.StartDate,
		res.EndDate,
		res.StartTime,
		res.EndTime,
		res.PickupLocation,
		res.ReturnLocation,
		res.TotalAmount,
		res.Status,
		res.PaymentStatus,
		res.Notes,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing reservation: %w", err)
	}
	return nil
}

// ListByGuestEmail returns the guest's reservations newest first, joined with
// the vehicle's brand/model/year for display. No rows is an empty slice.
func (r *ReservationRepository) ListByGuestEmail(ctx context.Context, email string, limit int) ([]entities.BookingResponse, error) {
	query := `
		SELECT
			r.reservation_number, r.vehicle_id, vb.name, v.model, v.year,
			r.guest_name, r.guest_phone, r.guest_email,
			r.start_date, r.end_date, r.start_time, r.end_time,
			r.pickup_location, r.return_location,
			r.total_amount, r.status, r.payment_status, COALESCE(r.notes, ''),
			r.created_at, r.updated_at
		FROM reservations r
		JOIN vehicles v ON r.vehicle_id = v.id
		JOIN vehicle_brands vb ON v.brand_id = vb.id
		WHERE r.guest_email = $1
		ORDER BY r.created_at DESC
		LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations for %s: %w", email, err)
	}
	defer rows.Close()

	bookings := []entities.BookingResponse{}
	for rows.Next() {
		var b entities.BookingResponse
		var startDate, endDate time.Time
		err := rows.Scan(
			&b.ReservationNumber, &b.VehicleID, &b.VehicleBrand, &b.VehicleModel, &b.VehicleYear,
			&b.GuestName, &b.GuestPhone, &b.GuestEmail,
			&startDate, &endDate, &b.StartTime, &b.EndTime,
			&b.PickupLocation, &b.ReturnLocation,
			&b.TotalAmount, &b.Status, &b.PaymentStatus, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		b.StartDate = startDate.Format(entities.DateLayout)
		b.EndDate = endDate.Format(entities.DateLayout)
		bookings = append(bookings, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservation rows: %w", err)
	}
	return bookings, nil
}

// GetByNumber looks a reservation up by its guest-facing number. The email
// must match; guests have no other credential.
func (r *ReservationRepository) GetByNumber(ctx context.Context, number, email string) (*entities.BookingResponse, error) {
	query := `
		SELECT
			r.reservation_number, r.vehicle_id, vb.name, v.model, v.year,
			r.guest_name, r.guest_phone, r.guest_email,
			r.start_date, r.end_date, r.start_time, r.end_time,
			r.pickup_location, r.return_location,
			r.total_amount, r.status, r.payment_status, COALESCE(r.notes, ''),
			r.created_at, r.updated_at
		FROM reservations r
		JOIN vehicles v ON r.vehicle_id = v.id
		JOIN vehicle_brands vb ON v.brand_id = vb.id
		WHERE r.reservation_number = $1 AND r.guest_email = $2`

	var b entities.BookingResponse
	var startDate, endDate time.Time
	err := r.DB.QueryRowContext(ctx, query, number, email).Scan(
		&b.ReservationNumber, &b.VehicleID, &b.VehicleBrand, &b.VehicleModel, &b.VehicleYear,
		&b.GuestName, &b.GuestPhone, &b.GuestEmail,
		&startDate, &endDate, &b.StartTime, &b.EndTime,
		&b.PickupLocation, &b.ReturnLocation,
		&b.TotalAmount, &b.Status, &b.PaymentStatus, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying reservation %s: %w", number, err)
	}
	b.StartDate = startDate.Format(entities.DateLayout)
	b.EndDate = endDate.Format(entities.DateLayout)
	return &b, nil
}

// BlockingRanges returns the date ranges of blocking reservations that touch
// the [from, to] window, for the disabled-date calendar.
func (r *ReservationRepository) BlockingRanges(ctx context.Context, vehicleID string, from, to time.Time) ([]entities.DateRange, error) {
	query := `
		SELECT r.start_date, r.end_date
		FROM reservations r
		WHERE r.vehicle_id = $1
		  AND r.status IN ('pending', 'confirmed')
		  AND r.end_date >= $2
		  AND r.start_date <= $3
		ORDER BY r.start_date`

	rows, err := r.DB.QueryContext(ctx, query, vehicleID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying booked ranges: %w", err)
	}
	defer rows.Close()

	var ranges []entities.DateRange
	for rows.Next() {
		var dr entities.DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return nil, fmt.Errorf("error scanning booked range: %w", err)
		}
		ranges = append(ranges, dr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booked ranges: %w", err)
	}
	return ranges, nil
}

// GetStatusByNumber returns the current status of a reservation, for
// transition checks before an admin update.
func (r *ReservationRepository) GetStatusByNumber(ctx context.Context, number string) (string, error) {
	var status string
	err := r.DB.QueryRowContext(ctx, `SELECT status FROM reservations WHERE reservation_number = $1`, number).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("error querying reservation status: %w", err)
	}
	return status, nil
}

// UpdateStatus sets a reservation's status and returns the updated row with
// guest contact details, so the caller can notify.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, number, status string) (*db.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $2, updated_at = NOW()
		WHERE reservation_number = $1
		RETURNING id, reservation_number, vehicle_id, guest_name, guest_phone, guest_email,
		          start_date, end_date, start_time, end_time,
		          pickup_location, return_location, total_amount, status, payment_status,
		          COALESCE(notes, ''), created_at, updated_at`

	var res db.Reservation
	err := r.DB.QueryRowContext(ctx, query, number, status).Scan(
		&res.ID, &res.ReservationNumber, &res.VehicleID, &res.GuestName, &res.GuestPhone, &res.GuestEmail,
		&res.StartDate, &res.EndDate, &res.StartTime, &res.EndTime,
		&res.PickupLocation, &res.ReturnLocation, &res.TotalAmount, &res.Status, &res.PaymentStatus,
		&res.Notes, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error updating reservation status: %w", err)
	}
	return &res, nil
}

// ListAll is the admin view: optional filters on date covered and status.
func (r *ReservationRepository) ListAll(ctx context.Context, date, status string, limit, offset int) ([]db.Reservation, error) {
	query := `
		SELECT id, reservation_number, vehicle_id, guest_name, guest_phone, guest_email,
		       start_date, end_date, start_time, end_time,
		       pickup_location, return_location, total_amount, status, payment_status,
		       COALESCE(notes, ''), created_at, updated_at
		FROM reservations
		WHERE ($1 = '' OR (start_date <= NULLIF($1, '')::date AND end_date >= NULLIF($1, '')::date))
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, date, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(
			&res.ID, &res.ReservationNumber, &res.VehicleID, &res.GuestName, &res.GuestPhone, &res.GuestEmail,
			&res.StartDate, &res.EndDate, &res.StartTime, &res.EndTime,
			&res.PickupLocation, &res.ReturnLocation, &res.TotalAmount, &res.Status, &res.PaymentStatus,
			&res.Notes, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating reservations: %w", err)
	}
	return reservations, nil
}
