package entities

import "time"

// DateLayout is the wire format for calendar dates. Dates carry no timezone
// and are treated as date-only throughout the booking flow.
const DateLayout = "2006-01-02"

type BookingRequest struct {
	VehicleID  string `json:"vehicle_id"`
	GuestName  string `json:"guest_name"`
	GuestPhone string `json:"guest_phone"`
	GuestEmail string `json:"guest_email"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Notes      string `json:"notes,omitempty"`
}

// Quote is the price breakdown shown to the guest before submitting.
type Quote struct {
	Days        int `json:"days"`
	DailyRate   int `json:"daily_rate"`
	Subtotal    int `json:"subtotal"`
	Discount    int `json:"discount"`
	TotalAmount int `json:"total_amount"`
}

type BookingResponse struct {
	ReservationNumber string    `json:"reservation_number"`
	VehicleID         string    `json:"vehicle_id"`
	VehicleBrand      string    `json:"vehicle_brand,omitempty"`
	VehicleModel      string    `json:"vehicle_model,omitempty"`
	VehicleYear       int       `json:"vehicle_year,omitempty"`
	GuestName         string    `json:"guest_name"`
	GuestPhone        string    `json:"guest_phone"`
	GuestEmail        string    `json:"guest_email"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	PickupLocation    string    `json:"pickup_location"`
	ReturnLocation    string    `json:"return_location"`
	TotalAmount       int       `json:"total_amount"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"payment_status"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type BookingsList struct {
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Bookings []BookingResponse `json:"bookings"`
}

type AvailabilityRequest struct {
	VehicleID string `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type AvailabilityResponse struct {
	Available          bool   `json:"available"`
	RequestedStartDate string `json:"requested_start_date"`
	RequestedEndDate   string `json:"requested_end_date"`
	Message            string `json:"message,omitempty"`
}

// BookedDates feeds the UI calendar: every individual date inside a blocking
// reservation within the queried horizon, as DateLayout strings.
type BookedDates struct {
	VehicleID string   `json:"vehicle_id"`
	Dates     []string `json:"dates"`
}

// DateRange is a stored reservation window as read from the store.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}
