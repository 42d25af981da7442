package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/backend"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/middleware"
	"github.com/vetaris/storefront-golang/internal/models"
	"go.uber.org/zap"
)

//
// --- Auth Handlers ---
//

// Login is the handler for POST /login
// It forwards the credentials and keeps the backend's session cookies in
// the visitor's storage for later calls.
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.Credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Authenticate against the backend ---
	cookies, err := h.Backend.Login(h.backendCtx(c), input)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Login failed: " + backend.Reason(err, "invalid credentials")})
			return
		}
		h.backendError(c, err)
		return
	}

	// 3. --- Remember the backend session ---
	data, err := backend.EncodeCookies(cookies)
	if err == nil {
		err = h.namespace(c).Set(c.Request.Context(), backendSessionKey, data)
	}
	if err != nil {
		h.Log.Error("backend session save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not keep you logged in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged in", "redirect": checkout.CatalogPath})
}

// Register is the handler for POST /register
// The confirmation must match before anything is sent to the backend.
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Confirm Password ---
	if input.Password != input.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match!"})
		return
	}

	// 3. --- Create the account ---
	if err := h.Backend.Register(h.backendCtx(c), input.Credentials()); err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			c.JSON(apiErr.StatusCode, gin.H{"error": "Registration failed: " + backend.Reason(err, "please check your details")})
			return
		}
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration successful! You can log in now.",
		"redirect": checkout.LoginPath,
	})
}

// Logout is the handler for POST /logout
// The local session is dropped even if the backend cannot be told.
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.Backend.Logout(h.backendCtx(c)); err != nil {
		h.Log.Warn("backend logout failed", zap.Error(err))
	}

	if err := h.namespace(c).Delete(c.Request.Context(), backendSessionKey); err != nil {
		h.Log.Warn("backend session delete failed", zap.Error(err))
	}
	h.Wizards.Discard(middleware.SessionID(c))

	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": checkout.LoginPath})
}

// Me is the handler for GET /me
// It returns the header state: who is logged in and whether the admin
// link shows.
func (h *Handlers) Me(c *gin.Context) {
	count := h.cartStore(c).Load(c.Request.Context()).ItemCount()
	c.JSON(http.StatusOK, h.nav(c, count))
}
