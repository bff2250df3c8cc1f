package service

import (
	"strings"
	"testing"
	"time"

	"rentacar/internal/db"
)

func TestSenderMessages(t *testing.T) {
	sender := NewSenderService()
	res := db.Reservation{
		ReservationNumber: "RENT-20240701-0001",
		GuestName:         "김렌트",
		StartDate:         time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
		StartTime:         "09:00",
		EndTime:           "18:00",
		PickupLocation:    "본점",
		TotalAmount:       199500,
		Status:            db.StatusConfirmed,
	}

	subject, body := sender.buildEmail(res)
	if !strings.Contains(subject, res.ReservationNumber) || !strings.Contains(subject, res.Status) {
		t.Errorf("Expected the subject to carry the number and status, got %q", subject)
	}
	for _, want := range []string{res.GuestName, res.ReservationNumber, "199500", res.PickupLocation} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected the email body to contain %q", want)
		}
	}

	sms := sender.buildSMS(res)
	if !strings.Contains(sms, res.ReservationNumber) || !strings.Contains(sms, res.Status) {
		t.Errorf("Expected the SMS to carry the number and status, got %q", sms)
	}
}
