package service

import (
	"context"
	"errors"
	"strings"

	"rentacar/internal/config"
	"rentacar/internal/db"
	"rentacar/internal/entities"
	apperr "rentacar/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

// SupportStore is the slice of the support repository the board service
// needs.
type SupportStore interface {
	Create(ctx context.Context, post *db.SupportPost, authorPassword string) error
	GetPasswordHash(ctx context.Context, id string) (string, error)
	ListApproved(ctx context.Context, postType string) ([]db.SupportPost, error)
	ListByStatus(ctx context.Context, status string) ([]db.SupportPost, error)
	GetApproved(ctx context.Context, id string) (*db.SupportPost, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

type SupportService struct {
	Repo SupportStore
	cfg  *config.Config
}

func NewSupportService(repo SupportStore, cfg *config.Config) *SupportService {
	return &SupportService{Repo: repo, cfg: cfg}
}

// CreatePost submits a board post. Guest posts start pending and wait for
// moderation; admin posts are approved immediately.
func (s *SupportService) CreatePost(ctx context.Context, req entities.CreatePostRequest, isAdmin bool) (*entities.SupportPostResponse, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "content is required"
	}
	if req.Type != "notice" && req.Type != "community" {
		fields["type"] = "type must be notice or community"
	}
	if strings.TrimSpace(req.AuthorName) == "" {
		fields["author_name"] = "author name is required"
	}
	if req.Type == "notice" && !isAdmin {
		fields["type"] = "only admins can post notices"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	status := "pending"
	if isAdmin {
		status = "approved"
	}

	post := &db.SupportPost{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Type:       req.Type,
		AuthorName: strings.TrimSpace(req.AuthorName),
		IsAdmin:    isAdmin,
		Status:     status,
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if err := s.Repo.Create(ctx, post, req.AuthorPassword); err != nil {
		return nil, apperr.NewStoreError("post creation failed", err)
	}
	resp := postResponse(post)
	return &resp, nil
}

func (s *SupportService) ListPosts(ctx context.Context, postType string) ([]entities.SupportPostResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	posts, err := s.Repo.ListApproved(ctx, postType)
	if err != nil {
		return nil, apperr.NewStoreError("post listing failed", err)
	}
	return postResponses(posts), nil
}

// GetPost returns one approved post, counting the view.
func (s *SupportService) GetPost(ctx context.Context, id string) (*entities.SupportPostResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	post, err := s.Repo.GetApproved(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := postResponse(post)
	return &resp, nil
}

// VerifyPostPassword checks the password a guest set when submitting the
// post, so they can prove ownership before edits. Posts without a password
// never verify.
func (s *SupportService) VerifyPostPassword(ctx context.Context, id, password string) (bool, error) {
	if password == "" {
		return false, &apperr.ValidationError{Fields: map[string]string{"password": "password is required"}}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	hash, err := s.Repo.GetPasswordHash(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, apperr.ErrNotFound
		}
		return false, apperr.NewStoreError("post password check failed", err)
	}
	if hash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// ListModerationQueue is the admin view over any status.
func (s *SupportService) ListModerationQueue(ctx context.Context, status string) ([]entities.SupportPostResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	posts, err := s.Repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperr.NewStoreError("moderation listing failed", err)
	}
	return postResponses(posts), nil
}

func (s *SupportService) ModeratePost(ctx context.Context, id, status string) error {
	if status != "approved" && status != "rejected" {
		return &apperr.ValidationError{Fields: map[string]string{"status": "status must be approved or rejected"}}
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.UpdateStatus(ctx, id, status)
}

func (s *SupportService) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.Repo.Delete(ctx, id)
}

func postResponse(p *db.SupportPost) entities.SupportPostResponse {
	return entities.SupportPostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Type:       p.Type,
		AuthorName: p.AuthorName,
		IsAdmin:    p.IsAdmin,
		Status:     p.Status,
		Views:      p.Views,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func postResponses(posts []db.SupportPost) []entities.SupportPostResponse {
	responses := make([]entities.SupportPostResponse, 0, len(posts))
	for i := range posts {
		responses = append(responses, postResponse(&posts[i]))
	}
	return responses
}
