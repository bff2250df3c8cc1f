package service

import (
	"fmt"
	"log"
	"time"

	"rentacar/internal/db"
	"rentacar/internal/entities"
)

// SenderService notifies guests about their reservation over email and SMS.
// Sends happen on goroutines; a failed send is logged, never surfaced to the
// request that triggered it.
type SenderService struct {
	location *time.Location
}

func NewSenderService() *SenderService {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &SenderService{location: loc}
}

func (s *SenderService) ReservationStatusChanged(res db.Reservation) {
	subject, body := s.buildEmail(res)
	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body, ""); err != nil {
			log.Printf("ALERT (async): email for reservation %s failed: %v", res.ReservationNumber, err)
		}
	}(res.GuestEmail, res.GuestName, subject, body)

	go func(toPhone, body string) {
		if err := SendSMS(toPhone, body); err != nil {
			log.Printf("ALERT (async): SMS for reservation %s failed: %v", res.ReservationNumber, err)
		}
	}(res.GuestPhone, s.buildSMS(res))
}

func (s *SenderService) emailData(res db.Reservation) entities.ReservationEmailData {
	return entities.ReservationEmailData{
		GuestName:          res.GuestName,
		ReservationNumber:  res.ReservationNumber,
		StartDateFormatted: res.StartDate.In(s.location).Format("02 Jan 2006"),
		EndDateFormatted:   res.EndDate.In(s.location).Format("02 Jan 2006"),
		PickupLocation:     res.PickupLocation,
		TotalAmount:        res.TotalAmount,
		Status:             res.Status,
		CurrentYear:        time.Now().In(s.location).Year(),
	}
}

func (s *SenderService) buildEmail(res db.Reservation) (subject, body string) {
	data := s.emailData(res)
	subject = fmt.Sprintf("Your RentACar reservation is %s - No. %s", data.Status, data.ReservationNumber)
	body = fmt.Sprintf(
		"Hello %s,\n\nYour reservation at RentACar is %s.\n\n"+
			"Reservation details:\n"+
			"Reservation number: %s\n"+
			"Pickup: %s %s at %s\n"+
			"Return: %s %s\n"+
			"Total amount: %d KRW\n\n"+
			"Thank you for choosing RentACar.\n\n"+
			"RentACar. All rights reserved. %d",
		data.GuestName, data.Status,
		data.ReservationNumber,
		data.StartDateFormatted, res.StartTime, data.PickupLocation,
		data.EndDateFormatted, res.EndTime,
		data.TotalAmount, data.CurrentYear,
	)
	return subject, body
}

func (s *SenderService) buildSMS(res db.Reservation) string {
	data := s.emailData(res)
	return fmt.Sprintf("RentACar: reservation %s is now %s.\nPickup: %s %s.\nDetails in your email.",
		data.ReservationNumber, data.Status,
		data.StartDateFormatted, res.StartTime,
	)
}
