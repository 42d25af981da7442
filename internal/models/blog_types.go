package models

// BlogPost is an article managed from the admin back-office.
type BlogPost struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   Timestamp `json:"created_at"`
}

// BlogPostInput is the admin blog form. Slug is optional; when empty it is
// derived from the title.
type BlogPostInput struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug"`
	Content     string `json:"content" binding:"required"`
	Image       string `json:"image"`
	IsPublished bool   `json:"is_published"`
}
