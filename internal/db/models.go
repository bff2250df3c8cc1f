package db

import (
	"time"

	"github.com/lib/pq"
)

// Reservation statuses. Only pending and confirmed block availability.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Vehicle struct {
	ID         string
	BrandID    string
	CategoryID string
	LocationID string
	Brand      string
	Model      string
	Year       int
	DailyRate  int
	Status     string
	Features   pq.StringArray
	Images     pq.StringArray
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type VehicleBrand struct {
	ID      string
	Name    string
	LogoURL string
	Country string
}

type VehicleCategory struct {
	ID            string
	Name          string
	Description   string
	BaseDailyRate int
}

type VehicleLocation struct {
	ID      string
	Name    string
	Address string
	Phone   string
}

// Reservation is a guest booking. Guests have no account; the row carries
// their name, phone and email directly and is looked up by email.
type Reservation struct {
	ID                string
	ReservationNumber string
	VehicleID         string
	GuestName         string
	GuestPhone        string
	GuestEmail        string
	StartDate         time.Time
	EndDate           time.Time
	StartTime         string
	EndTime           string
	PickupLocation    string
	ReturnLocation    string
	TotalAmount       int
	Status            string
	PaymentStatus     string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Consultation struct {
	ID                 string
	ConsultationNumber string
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      string
	Subject            string
	Content            string
	Status             string
	Priority           string
	RentalStartDate    *time.Time
	RentalEndDate      *time.Time
	PreferredVehicle   string
	AdminMemo          string
	IsRead             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type SupportPost struct {
	ID         string
	Title      string
	Content    string
	Type       string // notice | community
	AuthorName string
	IsAdmin    bool
	Status     string // pending | approved | rejected
	Views      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
