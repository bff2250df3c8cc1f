package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rentacar/internal/db"
	apperr "rentacar/internal/errors"

	"golang.org/x/crypto/bcrypt"
)

type SupportRepository struct {
	DB *sql.DB
}

func NewSupportRepository(database *sql.DB) *SupportRepository {
	return &SupportRepository{DB: database}
}

// Create inserts a post. The optional guest password is bcrypt-hashed so a
// guest can later prove ownership for edits; admin posts carry no password.
func (r *SupportRepository) Create(ctx context.Context, post *db.SupportPost, authorPassword string) error {
	var passwordHash sql.NullString
	if authorPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(authorPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("error hashing post password: %w", err)
		}
		passwordHash = sql.NullString{String: string(hashed), Valid: true}
	}

	query := `
		INSERT INTO support_posts
		(title, content, type, author_name, author_password, is_admin, status, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		post.Title, post.Content, post.Type, post.AuthorName, passwordHash, post.IsAdmin, post.Status,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting support post: %w", err)
	}
	return nil
}

// GetPasswordHash returns the stored bcrypt hash for the post, empty when
// the post was submitted without a password.
func (r *SupportRepository) GetPasswordHash(ctx context.Context, id string) (string, error) {
	var hash sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT author_password FROM support_posts WHERE id = $1`, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("error querying support post password: %w", err)
	}
	return hash.String, nil
}

// ListApproved is the public listing. postType narrows to notice or
// community when set.
func (r *SupportRepository) ListApproved(ctx context.Context, postType string) ([]db.SupportPost, error) {
	query := `
		SELECT id, title, content, type, author_name, is_admin, status, views, created_at, updated_at
		FROM support_posts
		WHERE status = 'approved'
		  AND ($1 = '' OR type = $1)
		ORDER BY created_at DESC`
	return r.queryPosts(ctx, query, postType)
}

// ListByStatus is the admin moderation queue.
func (r *SupportRepository) ListByStatus(ctx context.Context, status string) ([]db.SupportPost, error) {
	query := `
		SELECT id, title, content, type, author_name, is_admin, status, views, created_at, updated_at
		FROM support_posts
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`
	return r.queryPosts(ctx, query, status)
}

// GetApproved fetches one approved post and bumps its views counter.
func (r *SupportRepository) GetApproved(ctx context.Context, id string) (*db.SupportPost, error) {
	query := `
		UPDATE support_posts
		SET views = views + 1
		WHERE id = $1 AND status = 'approved'
		RETURNING id, title, content, type, author_name, is_admin, status, views, created_at, updated_at`

	var p db.SupportPost
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Content, &p.Type, &p.AuthorName, &p.IsAdmin, &p.Status, &p.Views,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("error querying support post %s: %w", id, err)
	}
	return &p, nil
}

func (r *SupportRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE support_posts SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating support post status: %w", err)
	}
	return requireRow(result)
}

func (r *SupportRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM support_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting support post: %w", err)
	}
	return requireRow(result)
}

func (r *SupportRepository) queryPosts(ctx context.Context, query string, arg string) ([]db.SupportPost, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error querying support posts: %w", err)
	}
	defer rows.Close()

	posts := []db.SupportPost{}
	for rows.Next() {
		var p db.SupportPost
		err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Type, &p.AuthorName, &p.IsAdmin, &p.Status, &p.Views,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning support post: %w", err)
		}
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating support posts: %w", err)
	}
	return posts, nil
}
