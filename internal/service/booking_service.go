package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"time"

	"rentacar/internal/config"
	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"

	"github.com/lib/pq"
)

const reservationNumberAttempts = 3

var (
	phonePattern = regexp.MustCompile(`^[0-9\-\+\s\(\)]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ReservationStore is the slice of the reservation repository the booking
// service needs.
type ReservationStore interface {
	CountBlockingOverlaps(ctx context.Context, vehicleID string, start, end time.Time, sameDayTurnover bool) (int, error)
	CreateReservation(ctx context.Context, res *db.Reservation, sameDayTurnover bool) error
	ListByGuestEmail(ctx context.Context, email string, limit int) ([]entities.BookingResponse, error)
	GetByNumber(ctx context.Context, number, email string) (*entities.BookingResponse, error)
	BlockingRanges(ctx context.Context, vehicleID string, from, to time.Time) ([]entities.DateRange, error)
	GetStatusByNumber(ctx context.Context, number string) (string, error)
	UpdateStatus(ctx context.Context, number, status string) (*db.Reservation, error)
	ListAll(ctx context.Context, date, status string, limit, offset int) ([]db.Reservation, error)
}

// VehicleRates resolves a vehicle's daily rate and status for pricing.
type VehicleRates interface {
	GetDailyRate(ctx context.Context, id string) (rate int, status string, err error)
}

// StatusNotifier is told about reservation status changes so the guest can
// be emailed/texted. Implemented by SenderService.
type StatusNotifier interface {
	ReservationStatusChanged(res db.Reservation)
}

type BookingService struct {
	repo     ReservationStore
	vehicles VehicleRates
	notifier StatusNotifier
	cfg      *config.Config
}

func NewBookingService(repo ReservationStore, vehicles VehicleRates, notifier StatusNotifier, cfg *config.Config) *BookingService {
	return &BookingService{
		repo:     repo,
		vehicles: vehicles,
		notifier: notifier,
		cfg:      cfg,
	}
}

// CheckAvailability reports whether the vehicle is free for the requested
// window. A store error propagates as an error: callers must never read a
// failed check as "available".
func (s *BookingService) CheckAvailability(ctx context.Context, req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.VehicleID == "" {
		return nil, &apperr.ValidationError{Fields: map[string]string{"vehicle_id": "vehicle is required"}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	count, err := s.repo.CountBlockingOverlaps(ctx, req.VehicleID, start, end, s.cfg.AllowSameDayTurnover)
	if err != nil {
		log.Printf("Error checking availability for vehicle %s: %v", req.VehicleID, err)
		return nil, apperr.NewStoreError("availability check failed", err)
	}

	resp := &entities.AvailabilityResponse{
		Available:          count == 0,
		RequestedStartDate: req.StartDate,
		RequestedEndDate:   req.EndDate,
	}
	if !resp.Available {
		resp.Message = "vehicle is already booked for the requested dates"
	}
	return resp, nil
}

// CreateBooking validates the guest form, prices the rental, generates a
// reservation number and persists the reservation in pending state. The
// insert re-checks availability transactionally; on a number collision it
// regenerates and retries a bounded number of times.
func (s *BookingService) CreateBooking(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error) {
	form, err := validateBookingRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rate, vehicleStatus, err := s.vehicles.GetDailyRate(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStoreError("reservation creation failed", err)
	}
	if vehicleStatus == "unavailable" {
		return nil, apperr.ErrDateConflict
	}

	quote := PriceQuote(rate, form.start, form.end, s.cfg.LaunchDiscountPct)

	now := time.Now().UTC()
	reservation := &db.Reservation{
		VehicleID:      req.VehicleID,
		GuestName:      form.name,
		GuestPhone:     form.phone,
		GuestEmail:     form.email,
		StartDate:      form.start,
		EndDate:        form.end,
		StartTime:      form.startTime,
		EndTime:        form.endTime,
		PickupLocation: s.cfg.DefaultLocation,
		ReturnLocation: s.cfg.DefaultLocation,
		TotalAmount:    quote.TotalAmount,
		Status:         db.StatusPending,
		PaymentStatus:  db.PaymentPending,
		Notes:          form.notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for attempt := 0; attempt < reservationNumberAttempts; attempt++ {
		reservation.ReservationNumber = NewReservationNumber(now, rand.Intn(10000))

		err = s.repo.CreateReservation(ctx, reservation, s.cfg.AllowSameDayTurnover)
		if err == nil {
			return bookingResponse(reservation), nil
		}
		if errors.Is(err, apperr.ErrDateConflict) || errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		if isUniqueViolation(err, "reservations_reservation_number_key") {
			log.Printf("Reservation number %s collided, regenerating", reservation.ReservationNumber)
			continue
		}
		log.Printf("Error creating reservation: %v", err)
		return nil, apperr.NewStoreError("reservation creation failed", err)
	}
	return nil, apperr.NewStoreError("reservation creation failed", err)
}

// ListBookingsByEmail returns the guest's reservations newest first. An
// empty result is a valid outcome, not an error.
func (s *BookingService) ListBookingsByEmail(ctx context.Context, email string) (*entities.BookingsList, error) {
	if !emailPattern.MatchString(email) {
		return nil, &apperr.ValidationError{Fields: map[string]string{"email": "invalid email format"}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	bookings, err := s.repo.ListByGuestEmail(ctx, email, s.cfg.HistoryPageSize)
	if err != nil {
		log.Printf("Error listing reservations for %s: %v", email, err)
		return nil, apperr.NewStoreError("booking history lookup failed", err)
	}
	return &entities.BookingsList{
		Total:    len(bookings),
		Limit:    s.cfg.HistoryPageSize,
		Bookings: bookings,
	}, nil
}

// GetBooking is the guest self-service lookup by reservation number + email.
func (s *BookingService) GetBooking(ctx context.Context, number, email string) (*entities.BookingResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	booking, err := s.repo.GetByNumber(ctx, number, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStoreError("booking lookup failed", err)
	}
	return booking, nil
}

// BookedDates expands the vehicle's blocking reservations within the horizon
// into the individual dates the UI calendar disables.
func (s *BookingService) BookedDates(ctx context.Context, vehicleID, fromStr, toStr string) (*entities.BookedDates, error) {
	today := truncateToDay(time.Now().UTC())
	from := today
	to := today.AddDate(0, s.cfg.CalendarHorizonMonths, 0)

	var err error
	if fromStr != "" {
		if from, err = time.Parse(entities.DateLayout, fromStr); err != nil {
			return nil, &apperr.ValidationError{Fields: map[string]string{"from": "invalid date format"}}
		}
	}
	if toStr != "" {
		if to, err = time.Parse(entities.DateLayout, toStr); err != nil {
			return nil, &apperr.ValidationError{Fields: map[string]string{"to": "invalid date format"}}
		}
	}
	if to.Before(from) {
		return nil, &apperr.ValidationError{Fields: map[string]string{"to": "must not be before from"}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	ranges, err := s.repo.BlockingRanges(ctx, vehicleID, from, to)
	if err != nil {
		log.Printf("Error loading booked ranges for vehicle %s: %v", vehicleID, err)
		return nil, apperr.NewStoreError("booked dates lookup failed", err)
	}

	return &entities.BookedDates{
		VehicleID: vehicleID,
		Dates:     ExpandBookedDates(ranges, from, to),
	}, nil
}

// Quote prices a window without creating anything, for the booking form.
func (s *BookingService) Quote(ctx context.Context, vehicleID, startStr, endStr string) (*entities.Quote, error) {
	start, end, err := parseDateRange(startStr, endStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rate, _, err := s.vehicles.GetDailyRate(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStoreError("quote failed", err)
	}
	quote := PriceQuote(rate, start, end, s.cfg.LaunchDiscountPct)
	return &quote, nil
}

// legal admin-driven status transitions
var allowedTransitions = map[string][]string{
	db.StatusPending:   {db.StatusConfirmed, db.StatusCancelled},
	db.StatusConfirmed: {db.StatusActive, db.StatusCancelled},
	db.StatusActive:    {db.StatusCompleted},
}

// UpdateBookingStatus applies an admin status change and notifies the guest.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, number, newStatus string) (*db.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	current, err := s.repo.GetStatusByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStoreError("reservation lookup failed", err)
	}

	if !transitionAllowed(current, newStatus) {
		return nil, &apperr.ValidationError{Fields: map[string]string{
			"status": fmt.Sprintf("cannot move reservation from %s to %s", current, newStatus),
		}}
	}

	updated, err := s.repo.UpdateStatus(ctx, number, newStatus)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.NewStoreError("reservation update failed", err)
	}

	if s.notifier != nil {
		s.notifier.ReservationStatusChanged(*updated)
	}
	return updated, nil
}

// ListReservations is the admin listing, one page at a time.
func (s *BookingService) ListReservations(ctx context.Context, date, status string, page int) ([]db.Reservation, error) {
	if page < 0 {
		page = 0
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	reservations, err := s.repo.ListAll(ctx, date, status, s.cfg.HistoryPageSize, page*s.cfg.HistoryPageSize)
	if err != nil {
		return nil, apperr.NewStoreError("reservation listing failed", err)
	}
	return reservations, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type bookingForm struct {
	name      string
	phone     string
	email     string
	start     time.Time
	end       time.Time
	startTime string
	endTime   string
	notes     string
}

// validateBookingRequest checks every field and collects one error per
// failing field; the request is rejected wholesale if any field fails.
func validateBookingRequest(req entities.BookingRequest) (*bookingForm, error) {
	fields := map[string]string{}

	if req.VehicleID == "" {
		fields["vehicle_id"] = "vehicle is required"
	}

	name := strings.TrimSpace(req.GuestName)
	if name == "" {
		fields["guest_name"] = "name is required"
	}

	phone := strings.TrimSpace(req.GuestPhone)
	if phone == "" {
		fields["guest_phone"] = "phone is required"
	} else if !phonePattern.MatchString(phone) {
		fields["guest_phone"] = "invalid phone format"
	}

	email := strings.TrimSpace(req.GuestEmail)
	if email == "" {
		fields["guest_email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		fields["guest_email"] = "invalid email format"
	}

	var start, end time.Time
	var err error
	if req.StartDate == "" {
		fields["start_date"] = "start date is required"
	} else if start, err = time.Parse(entities.DateLayout, req.StartDate); err != nil {
		fields["start_date"] = "invalid date format"
	}
	if req.EndDate == "" {
		fields["end_date"] = "end date is required"
	} else if end, err = time.Parse(entities.DateLayout, req.EndDate); err != nil {
		fields["end_date"] = "invalid date format"
	} else if !start.IsZero() && end.Before(start) {
		fields["end_date"] = "end date must be on or after start date"
	}

	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	startTime := req.StartTime
	if startTime == "" {
		startTime = "09:00"
	}
	endTime := req.EndTime
	if endTime == "" {
		endTime = "18:00"
	}

	return &bookingForm{
		name:      name,
		phone:     phone,
		email:     email,
		start:     start,
		end:       end,
		startTime: startTime,
		endTime:   endTime,
		notes:     strings.TrimSpace(req.Notes),
	}, nil
}

func parseDateRange(startStr, endStr string) (start, end time.Time, err error) {
	fields := map[string]string{}
	if startStr == "" {
		fields["start_date"] = "start date is required"
	} else if start, err = time.Parse(entities.DateLayout, startStr); err != nil {
		fields["start_date"] = "invalid date format"
	}
	if endStr == "" {
		fields["end_date"] = "end date is required"
	} else if end, err = time.Parse(entities.DateLayout, endStr); err != nil {
		fields["end_date"] = "invalid date format"
	} else if !start.IsZero() && end.Before(start) {
		fields["end_date"] = "end date must be on or after start date"
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, &apperr.ValidationError{Fields: fields}
	}
	return start, end, nil
}

// InclusiveDays counts rental days including both the pickup and return day.
// Never less than 1.
func InclusiveDays(start, end time.Time) int {
	days := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	if days < 1 {
		return 1
	}
	return days
}

// PriceQuote derives the total: daily rate times inclusive day count, minus
// the launch discount rounded to the nearest unit.
func PriceQuote(dailyRate int, start, end time.Time, discountPct float64) entities.Quote {
	days := InclusiveDays(start, end)
	subtotal := dailyRate * days
	discount := int(math.Round(float64(subtotal) * discountPct / 100))
	return entities.Quote{
		Days:        days,
		DailyRate:   dailyRate,
		Subtotal:    subtotal,
		Discount:    discount,
		TotalAmount: subtotal - discount,
	}
}

// NewReservationNumber builds the guest-facing identifier,
// RENT-YYYYMMDD-XXXX with a zero-padded random suffix. Uniqueness is
// enforced by the store constraint; callers retry on collision.
func NewReservationNumber(now time.Time, suffix int) string {
	return fmt.Sprintf("RENT-%s-%04d", now.Format("20060102"), suffix%10000)
}

// RangesOverlap is the interval-intersection test the repository queries
// implement in SQL. With sameDayTurnover the shared boundary day does not
// conflict.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time, sameDayTurnover bool) bool {
	if sameDayTurnover {
		return aStart.Before(bEnd) && aEnd.After(bStart)
	}
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ExpandBookedDates turns reservation ranges into the sorted set of
// individual dates inside [from, to].
func ExpandBookedDates(ranges []entities.DateRange, from, to time.Time) []string {
	seen := map[string]bool{}
	var dates []string
	for _, r := range ranges {
		day := truncateToDay(r.Start)
		if day.Before(from) {
			day = from
		}
		last := truncateToDay(r.End)
		if last.After(to) {
			last = to
		}
		for ; !day.After(last); day = day.AddDate(0, 0, 1) {
			key := day.Format(entities.DateLayout)
			if !seen[key] {
				seen[key] = true
				dates = append(dates, key)
			}
		}
	}
	sort.Strings(dates)
	return dates
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

func bookingResponse(res *db.Reservation) *entities.BookingResponse {
	return &entities.BookingResponse{
		ReservationNumber: res.ReservationNumber,
		VehicleID:         res.VehicleID,
		GuestName:         res.GuestName,
		GuestPhone:        res.GuestPhone,
		GuestEmail:        res.GuestEmail,
		StartDate:         res.StartDate.Format(entities.DateLayout),
		EndDate:           res.EndDate.Format(entities.DateLayout),
		StartTime:         res.StartTime,
		EndTime:           res.EndTime,
		PickupLocation:    res.PickupLocation,
		ReturnLocation:    res.ReturnLocation,
		TotalAmount:       res.TotalAmount,
		Status:            res.Status,
		PaymentStatus:     res.PaymentStatus,
		Notes:             res.Notes,
		CreatedAt:         res.CreatedAt,
		UpdatedAt:         res.UpdatedAt,
	}
}
