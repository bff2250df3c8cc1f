package entities

import "time"

type ConsultationRequest struct {
	CustomerName     string `json:"customer_name"`
	CustomerPhone    string `json:"customer_phone"`
	CustomerEmail    string `json:"customer_email"`
	Subject          string `json:"subject"`
	Content          string `json:"content"`
	RentalStartDate  string `json:"rental_start_date,omitempty"`
	RentalEndDate    string `json:"rental_end_date,omitempty"`
	PreferredVehicle string `json:"preferred_vehicle,omitempty"`
}

type ConsultationResponse struct {
	ID                 string    `json:"id"`
	ConsultationNumber string    `json:"consultation_number"`
	CustomerName       string    `json:"customer_name"`
	CustomerPhone      string    `json:"customer_phone"`
	CustomerEmail      string    `json:"customer_email"`
	Subject            string    `json:"subject"`
	Content            string    `json:"content"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	RentalStartDate    string    `json:"rental_start_date,omitempty"`
	RentalEndDate      string    `json:"rental_end_date,omitempty"`
	PreferredVehicle   string    `json:"preferred_vehicle,omitempty"`
	AdminMemo          string    `json:"admin_memo,omitempty"`
	IsRead             bool      `json:"is_read"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
