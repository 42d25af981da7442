package models

// AuthStatus is the answer of GET /api/auth/me.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	IsAdmin       bool   `json:"is_admin,omitempty"`
}

// Credentials is the login form, forwarded as-is to the backend.
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterInput is the registration form. ConfirmPassword never leaves
// the storefront.
type RegisterInput struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// Credentials strips the confirmation field.
func (in RegisterInput) Credentials() Credentials {
	return Credentials{Email: in.Email, Password: in.Password}
}
