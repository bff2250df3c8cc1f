package entities

import "time"

type CreatePostRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	Type           string `json:"type"` // notice | community
	AuthorName     string `json:"author_name"`
	AuthorPassword string `json:"author_password,omitempty"`
}

type SupportPostResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	AuthorName string    `json:"author_name"`
	IsAdmin    bool      `json:"is_admin"`
	Status     string    `json:"status"`
	Views      int       `json:"views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
