package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentacar/internal/config"
	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"
	"rentacar/internal/repository"
)

type ConsultationService struct {
	Repo *repository.ConsultationRepository
	cfg  *config.Config
}

func NewConsultationService(repo *repository.ConsultationRepository, cfg *config.Config) *ConsultationService {
	return &ConsultationService{Repo: repo, cfg: cfg}
}

// Create takes a guest rental consultation. Unlike bookings, a missing email
// falls back to a placeholder so phone-first customers can still submit.
func (s *ConsultationService) Create(ctx context.Context, req entities.ConsultationRequest) (*entities.ConsultationResponse, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.CustomerName) == "" {
		fields["customer_name"] = "name is required"
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		fields["customer_phone"] = "phone is required"
	}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "subject is required"
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "content is required"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	email := strings.TrimSpace(req.CustomerEmail)
	if email == "" {
		email = "noemail@temp.com"
	}

	consultation := &db.Consultation{
		ConsultationNumber: fmt.Sprintf("CONS%d", time.Now().UnixMilli()),
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerPhone:      strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:      email,
		Subject:            strings.TrimSpace(req.Subject),
		Content:            req.Content,
		Status:             "pending",
		Priority:           "normal",
		PreferredVehicle:   req.PreferredVehicle,
		IsRead:             false,
	}

	if req.RentalStartDate != "" {
		start, err := time.Parse(entities.DateLayout, req.RentalStartDate)
		if err != nil {
			return nil, &apperr.ValidationError{Fields: map[string]string{"rental_start_date": "invalid date format"}}
		}
		consultation.RentalStartDate = &start
	}
	if req.RentalEndDate != "" {
		end, err := time.Parse(entities.DateLayout, req.RentalEndDate)
		if err != nil {
			return nil, &apperr.ValidationError{Fields: map[string]string{"rental_end_date": "invalid date format"}}
		}
		consultation.RentalEndDate = &end
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.Repo.Create(ctx, consultation); err != nil {
		return nil, apperr.NewStoreError("consultation creation failed", err)
	}
	resp := consultationResponse(consultation)
	return &resp, nil
}

func (s *ConsultationService) List(ctx context.Context, unreadOnly bool) ([]entities.ConsultationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	consultations, err := s.Repo.List(ctx, unreadOnly)
	if err != nil {
		return nil, apperr.NewStoreError("consultation listing failed", err)
	}
	responses := make([]entities.ConsultationResponse, 0, len(consultations))
	for i := range consultations {
		responses = append(responses, consultationResponse(&consultations[i]))
	}
	return responses, nil
}

func (s *ConsultationService) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.MarkRead(ctx, id)
}

var consultationStatuses = map[string]bool{
	"pending": true, "in_progress": true, "resolved": true, "closed": true,
}

func (s *ConsultationService) UpdateStatus(ctx context.Context, id, status, adminMemo string) error {
	if !consultationStatuses[status] {
		return &apperr.ValidationError{Fields: map[string]string{"status": "unknown consultation status"}}
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.UpdateStatus(ctx, id, status, adminMemo)
}

func consultationResponse(c *db.Consultation) entities.ConsultationResponse {
	resp := entities.ConsultationResponse{
		ID:                 c.ID,
		ConsultationNumber: c.ConsultationNumber,
		CustomerName:       c.CustomerName,
		CustomerPhone:      c.CustomerPhone,
		CustomerEmail:      c.CustomerEmail,
		Subject:            c.Subject,
		Content:            c.Content,
		Status:             c.Status,
		Priority:           c.Priority,
		PreferredVehicle:   c.PreferredVehicle,
		AdminMemo:          c.AdminMemo,
		IsRead:             c.IsRead,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.RentalStartDate != nil {
		resp.RentalStartDate = c.RentalStartDate.Format(entities.DateLayout)
	}
	if c.RentalEndDate != nil {
		resp.RentalEndDate = c.RentalEndDate.Format(entities.DateLayout)
	}
	return resp
}
