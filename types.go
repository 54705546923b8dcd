package authshield

import (
	"context"
	"time"
)

// User is the public account shape. It never carries the password hash.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
}

// UserRecord is what a UserProvider stores: the user plus its password hash.
type UserRecord struct {
	User
	PasswordHash string
}

// LoginCredentials is the Login input. RememberMe selects the persistent
// token tier.
type LoginCredentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type SignupCredentials struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"eq=true"`
}

// AuthResponse is returned by Login and Signup.
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// UserProvider is the account directory the Engine authenticates against.
// Emails passed in are already normalized.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, rec UserRecord) (UserRecord, error)
	UpdateUser(ctx context.Context, rec UserRecord) error
}
