package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/vetaris/storefront-golang/internal/models"
)

//
// --- Blog Handlers ---
//

// ListPublishedPosts is the handler for GET /blog
// Drafts are left out.
func (h *Handlers) ListPublishedPosts(c *gin.Context) {
	posts, err := h.Backend.ListBlogPosts(h.backendCtx(c))
	if err != nil {
		h.backendError(c, err)
		return
	}

	published := make([]models.BlogPost, 0, len(posts))
	for _, p := range posts {
		if p.IsPublished {
			published = append(published, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"posts": published})
}

// AdminListPosts is the handler for GET /admin/blog
func (h *Handlers) AdminListPosts(c *gin.Context) {
	posts, err := h.Backend.ListBlogPosts(h.backendCtx(c))
	if err != nil {
		h.backendError(c, err)
		return
	}
	if posts == nil {
		posts = []models.BlogPost{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// bindPost reads the blog form and fills in the slug from the title
// when the admin left it empty.
func bindPost(c *gin.Context) (models.BlogPostInput, bool) {
	var input models.BlogPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return input, false
	}
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Slug == "" {
		input.Slug = slug.Make(input.Title)
	} else {
		input.Slug = slug.Make(input.Slug)
	}
	return input, true
}

// CreatePost is the handler for POST /admin/blog
func (h *Handlers) CreatePost(c *gin.Context) {
	input, ok := bindPost(c)
	if !ok {
		return
	}

	if err := h.Backend.CreateBlogPost(h.backendCtx(c), input); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Post created", "slug": input.Slug})
}

// UpdatePost is the handler for PUT /admin/blog/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	input, ok := bindPost(c)
	if !ok {
		return
	}

	if err := h.Backend.UpdateBlogPost(h.backendCtx(c), id, input); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated", "slug": input.Slug})
}

// DeletePost is the handler for DELETE /admin/blog/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.Backend.DeleteBlogPost(h.backendCtx(c), id); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}
