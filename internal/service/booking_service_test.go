package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"testing"
	"time"

	"rentacar/internal/config"
	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"

	"github.com/lib/pq"
)

func testConfig() *config.Config {
	return &config.Config{
		DefaultLocation:       "본점",
		LaunchDiscountPct:     5,
		AllowSameDayTurnover:  false,
		StoreTimeout:          time.Second,
		HistoryPageSize:       50,
		CalendarHorizonMonths: 3,
	}
}

func date(s string) time.Time {
	t, err := time.Parse(entities.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// fakeStore keeps reservations in memory and implements the same blocking
// and overlap contract as the SQL repository.
type fakeStore struct {
	reservations []db.Reservation
	countErr     error
	listErr      error
	createErrs   []error
	createCalls  int
	listResult   []entities.BookingResponse
	updated      *db.Reservation
}

func (f *fakeStore) CountBlockingOverlaps(_ context.Context, vehicleID string, start, end time.Time, sameDayTurnover bool) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, r := range f.reservations {
		if r.VehicleID != vehicleID {
			continue
		}
		if r.Status != db.StatusPending && r.Status != db.StatusConfirmed {
			continue
		}
		if RangesOverlap(r.StartDate, r.EndDate, start, end, sameDayTurnover) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateReservation(ctx context.Context, res *db.Reservation, sameDayTurnover bool) error {
	f.createCalls++
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	count, err := f.CountBlockingOverlaps(ctx, res.VehicleID, res.StartDate, res.EndDate, sameDayTurnover)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.ErrDateConflict
	}
	res.ID = fmt.Sprintf("res-%d", len(f.reservations)+1)
	f.reservations = append(f.reservations, *res)
	return nil
}

func (f *fakeStore) ListByGuestEmail(_ context.Context, email string, limit int) ([]entities.BookingResponse, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return []entities.BookingResponse{}, nil
}

func (f *fakeStore) GetByNumber(_ context.Context, number, email string) (*entities.BookingResponse, error) {
	for _, r := range f.reservations {
		if r.ReservationNumber == number && r.GuestEmail == email {
			resp := bookingResponse(&r)
			return resp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeStore) BlockingRanges(_ context.Context, vehicleID string, from, to time.Time) ([]entities.DateRange, error) {
	var ranges []entities.DateRange
	for _, r := range f.reservations {
		if r.VehicleID != vehicleID {
			continue
		}
		if r.Status != db.StatusPending && r.Status != db.StatusConfirmed {
			continue
		}
		if !r.EndDate.Before(from) && !r.StartDate.After(to) {
			ranges = append(ranges, entities.DateRange{Start: r.StartDate, End: r.EndDate})
		}
	}
	return ranges, nil
}

func (f *fakeStore) GetStatusByNumber(_ context.Context, number string) (string, error) {
	for _, r := range f.reservations {
		if r.ReservationNumber == number {
			return r.Status, nil
		}
	}
	return "", apperr.ErrNotFound
}

func (f *fakeStore) UpdateStatus(_ context.Context, number, status string) (*db.Reservation, error) {
	for i := range f.reservations {
		if f.reservations[i].ReservationNumber == number {
			f.reservations[i].Status = status
			f.updated = &f.reservations[i]
			return &f.reservations[i], nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeStore) ListAll(_ context.Context, date, status string, limit, offset int) ([]db.Reservation, error) {
	return f.reservations, nil
}

type fakeVehicles struct {
	rate   int
	status string
	err    error
}

func (f *fakeVehicles) GetDailyRate(_ context.Context, id string) (int, string, error) {
	if f.err != nil {
		return 0, "", f.err
	}
	return f.rate, f.status, nil
}

type recordingNotifier struct {
	changes []db.Reservation
}

func (n *recordingNotifier) ReservationStatusChanged(res db.Reservation) {
	n.changes = append(n.changes, res)
}

func newTestService(store *fakeStore, vehicles *fakeVehicles) *BookingService {
	return NewBookingService(store, vehicles, nil, testConfig())
}

func validRequest() entities.BookingRequest {
	return entities.BookingRequest{
		VehicleID:  "veh-1",
		GuestName:  "김렌트",
		GuestPhone: "010-1234-5678",
		GuestEmail: "a@b.com",
		StartDate:  "2024-07-01",
		EndDate:    "2024-07-03",
	}
}

func TestPriceQuote(t *testing.T) {
	quote := PriceQuote(70000, date("2024-06-10"), date("2024-06-12"), 5)

	if quote.Days != 3 {
		t.Errorf("Expected 3 days, got %d", quote.Days)
	}
	if quote.Subtotal != 210000 {
		t.Errorf("Expected subtotal 210000, got %d", quote.Subtotal)
	}
	if quote.Discount != 10500 {
		t.Errorf("Expected discount 10500, got %d", quote.Discount)
	}
	if quote.TotalAmount != 199500 {
		t.Errorf("Expected total 199500, got %d", quote.TotalAmount)
	}
}

func TestInclusiveDays_SameDayIsOne(t *testing.T) {
	if days := InclusiveDays(date("2024-06-10"), date("2024-06-10")); days != 1 {
		t.Errorf("Expected 1 day for a same-day rental, got %d", days)
	}
}

func TestRangesOverlap(t *testing.T) {
	existingStart := date("2024-06-10")
	existingEnd := date("2024-06-15")

	// Shared boundary day conflicts under the inclusive policy.
	if !RangesOverlap(existingStart, existingEnd, date("2024-06-15"), date("2024-06-20"), false) {
		t.Error("Expected boundary day to conflict with same-day turnover disabled")
	}
	if RangesOverlap(existingStart, existingEnd, date("2024-06-16"), date("2024-06-20"), false) {
		t.Error("Expected disjoint ranges not to conflict")
	}

	// With same-day turnover the boundary day is free.
	if RangesOverlap(existingStart, existingEnd, date("2024-06-15"), date("2024-06-20"), true) {
		t.Error("Expected boundary day not to conflict with same-day turnover enabled")
	}
	if !RangesOverlap(existingStart, existingEnd, date("2024-06-14"), date("2024-06-20"), true) {
		t.Error("Expected a one-day overlap to conflict even with same-day turnover")
	}
}

func TestCheckAvailability_BlockedByConfirmedReservation(t *testing.T) {
	store := &fakeStore{reservations: []db.Reservation{{
		VehicleID: "veh-1",
		Status:    db.StatusConfirmed,
		StartDate: date("2024-06-10"),
		EndDate:   date("2024-06-15"),
	}}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	resp, err := svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		VehicleID: "veh-1", StartDate: "2024-06-15", EndDate: "2024-06-20",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resp.Available {
		t.Error("Expected boundary-day query to be unavailable")
	}

	resp, err = svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		VehicleID: "veh-1", StartDate: "2024-06-16", EndDate: "2024-06-20",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !resp.Available {
		t.Error("Expected disjoint query to be available")
	}
}

func TestCheckAvailability_CancelledDoesNotBlock(t *testing.T) {
	store := &fakeStore{reservations: []db.Reservation{{
		VehicleID: "veh-1",
		Status:    db.StatusCancelled,
		StartDate: date("2024-06-10"),
		EndDate:   date("2024-06-15"),
	}}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	resp, err := svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		VehicleID: "veh-1", StartDate: "2024-06-12", EndDate: "2024-06-14",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !resp.Available {
		t.Error("Expected cancelled reservation not to block the window")
	}
}

func TestCheckAvailability_FailsClosedOnStoreError(t *testing.T) {
	store := &fakeStore{countErr: errors.New("connection refused")}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	resp, err := svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		VehicleID: "veh-1", StartDate: "2024-06-12", EndDate: "2024-06-14",
	})
	if err == nil {
		t.Fatal("Expected an error when the store fails")
	}
	if resp != nil {
		t.Error("Expected no response on store failure; availability must not be assumed")
	}
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("Expected a StoreError, got %T: %v", err, err)
	}
}

func TestCheckAvailability_RejectsReversedRange(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeVehicles{rate: 70000, status: "available"})

	_, err := svc.CheckAvailability(context.Background(), entities.AvailabilityRequest{
		VehicleID: "veh-1", StartDate: "2024-06-20", EndDate: "2024-06-10",
	})
	var validationErr *apperr.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected a validation error, got %v", err)
	}
	if _, ok := validationErr.Fields["end_date"]; !ok {
		t.Error("Expected the end_date field to be flagged")
	}
}

func TestValidateBookingRequest(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*entities.BookingRequest)
		badField string
	}{
		{"empty name", func(r *entities.BookingRequest) { r.GuestName = "  " }, "guest_name"},
		{"malformed phone", func(r *entities.BookingRequest) { r.GuestPhone = "abc" }, "guest_phone"},
		{"malformed email", func(r *entities.BookingRequest) { r.GuestEmail = "not-an-email" }, "guest_email"},
		{"missing start date", func(r *entities.BookingRequest) { r.StartDate = "" }, "start_date"},
		{"end before start", func(r *entities.BookingRequest) { r.EndDate = "2024-06-30" }, "end_date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := validateBookingRequest(req)
			var validationErr *apperr.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected a validation error, got %v", err)
			}
			if _, ok := validationErr.Fields[tc.badField]; !ok {
				t.Errorf("Expected field %q to be flagged, got %v", tc.badField, validationErr.Fields)
			}
		})
	}

	form, err := validateBookingRequest(validRequest())
	if err != nil {
		t.Fatalf("Expected the valid form to pass, got: %v", err)
	}
	if form.startTime != "09:00" || form.endTime != "18:00" {
		t.Errorf("Expected default times 09:00/18:00, got %s/%s", form.startTime, form.endTime)
	}
}

func TestCreateBooking(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	booking, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if booking.Status != db.StatusPending {
		t.Errorf("Expected status pending, got %s", booking.Status)
	}
	if booking.PaymentStatus != db.PaymentPending {
		t.Errorf("Expected payment status pending, got %s", booking.PaymentStatus)
	}
	if booking.TotalAmount != 199500 {
		t.Errorf("Expected total 199500, got %d", booking.TotalAmount)
	}
	if booking.PickupLocation != "본점" || booking.ReturnLocation != "본점" {
		t.Errorf("Expected default locations, got %s/%s", booking.PickupLocation, booking.ReturnLocation)
	}
	numberFormat := regexp.MustCompile(`^RENT-\d{8}-\d{4}$`)
	if !numberFormat.MatchString(booking.ReservationNumber) {
		t.Errorf("Reservation number %q does not match RENT-YYYYMMDD-XXXX", booking.ReservationNumber)
	}
}

func TestCreateBooking_ConflictWhenWindowTaken(t *testing.T) {
	store := &fakeStore{reservations: []db.Reservation{{
		VehicleID: "veh-1",
		Status:    db.StatusPending,
		StartDate: date("2024-07-02"),
		EndDate:   date("2024-07-05"),
	}}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	if !errors.Is(err, apperr.ErrDateConflict) {
		t.Fatalf("Expected a date conflict, got: %v", err)
	}
}

func TestCreateBooking_RetriesOnNumberCollision(t *testing.T) {
	collision := &pq.Error{Code: "23505", Constraint: "reservations_reservation_number_key"}
	store := &fakeStore{createErrs: []error{collision}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	booking, err := svc.CreateBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Expected the retry to succeed, got: %v", err)
	}
	if store.createCalls != 2 {
		t.Errorf("Expected 2 insert attempts, got %d", store.createCalls)
	}
	if booking.ReservationNumber == "" {
		t.Error("Expected a reservation number after retry")
	}
}

func TestCreateBooking_GivesUpAfterRepeatedCollisions(t *testing.T) {
	collision := &pq.Error{Code: "23505", Constraint: "reservations_reservation_number_key"}
	store := &fakeStore{createErrs: []error{collision, collision, collision}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected a store error after exhausting retries, got: %v", err)
	}
	if store.createCalls != reservationNumberAttempts {
		t.Errorf("Expected %d attempts, got %d", reservationNumberAttempts, store.createCalls)
	}
}

func TestCreateBooking_UnavailableVehicleConflicts(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeVehicles{rate: 70000, status: "unavailable"})

	_, err := svc.CreateBooking(context.Background(), validRequest())
	if !errors.Is(err, apperr.ErrDateConflict) {
		t.Fatalf("Expected a conflict for an unavailable vehicle, got: %v", err)
	}
}

func TestListBookingsByEmail_EmptyIsNotError(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeVehicles{rate: 70000, status: "available"})

	list, err := svc.ListBookingsByEmail(context.Background(), "nobody@nowhere.com")
	if err != nil {
		t.Fatalf("Expected no error for an empty history, got: %v", err)
	}
	if list.Total != 0 || len(list.Bookings) != 0 {
		t.Errorf("Expected an empty list, got %d bookings", len(list.Bookings))
	}
}

func TestListBookingsByEmail_IdempotentRead(t *testing.T) {
	store := &fakeStore{listResult: []entities.BookingResponse{
		{ReservationNumber: "RENT-20240710-0002"},
		{ReservationNumber: "RENT-20240701-0001"},
	}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	first, err := svc.ListBookingsByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := svc.ListBookingsByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected two reads with no intervening writes to return identical results")
	}
}

func TestListBookingsByEmail_StoreErrorIsDistinct(t *testing.T) {
	store := &fakeStore{listErr: errors.New("timeout")}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	_, err := svc.ListBookingsByEmail(context.Background(), "a@b.com")
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected a store error, got: %v", err)
	}
}

func TestUpdateBookingStatus_Transitions(t *testing.T) {
	store := &fakeStore{reservations: []db.Reservation{{
		ReservationNumber: "RENT-20240701-0001",
		Status:            db.StatusPending,
		GuestEmail:        "a@b.com",
	}}}
	notifier := &recordingNotifier{}
	svc := NewBookingService(store, &fakeVehicles{rate: 70000, status: "available"}, notifier, testConfig())

	updated, err := svc.UpdateBookingStatus(context.Background(), "RENT-20240701-0001", db.StatusConfirmed)
	if err != nil {
		t.Fatalf("Expected pending -> confirmed to be allowed, got: %v", err)
	}
	if updated.Status != db.StatusConfirmed {
		t.Errorf("Expected status confirmed, got %s", updated.Status)
	}
	if len(notifier.changes) != 1 {
		t.Errorf("Expected one notification, got %d", len(notifier.changes))
	}

	_, err = svc.UpdateBookingStatus(context.Background(), "RENT-20240701-0001", db.StatusPending)
	var validationErr *apperr.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected confirmed -> pending to be rejected, got: %v", err)
	}
}

func TestNewReservationNumber(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	if got := NewReservationNumber(now, 7); got != "RENT-20240610-0007" {
		t.Errorf("Expected RENT-20240610-0007, got %s", got)
	}
	if got := NewReservationNumber(now, 9999); got != "RENT-20240610-9999" {
		t.Errorf("Expected RENT-20240610-9999, got %s", got)
	}
}

func TestExpandBookedDates(t *testing.T) {
	ranges := []entities.DateRange{
		{Start: date("2024-06-10"), End: date("2024-06-12")},
		{Start: date("2024-06-12"), End: date("2024-06-13")}, // overlaps previous
		{Start: date("2024-06-01"), End: date("2024-06-30")}, // exceeds window
	}
	got := ExpandBookedDates(ranges, date("2024-06-09"), date("2024-06-14"))
	want := []string{"2024-06-09", "2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBookedDates_UsesBlockingReservationsOnly(t *testing.T) {
	store := &fakeStore{reservations: []db.Reservation{
		{VehicleID: "veh-1", Status: db.StatusConfirmed, StartDate: date("2099-01-10"), EndDate: date("2099-01-11")},
		{VehicleID: "veh-1", Status: db.StatusCancelled, StartDate: date("2099-01-20"), EndDate: date("2099-01-21")},
	}}
	svc := newTestService(store, &fakeVehicles{rate: 70000, status: "available"})

	dates, err := svc.BookedDates(context.Background(), "veh-1", "2099-01-01", "2099-01-31")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := []string{"2099-01-10", "2099-01-11"}
	if !reflect.DeepEqual(dates.Dates, want) {
		t.Errorf("Expected %v, got %v", want, dates.Dates)
	}
}
