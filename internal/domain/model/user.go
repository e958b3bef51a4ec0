package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"subscription-tracker/internal/domain"

	"github.com/google/uuid"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User is a registered account. The lifecycle engine only ever compares its ID
// for ownership checks.
type User struct {
	ID           string
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(id, name, lastName, email, passwordHash string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	name = strings.TrimSpace(name)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))
	if len(name) < 3 || len(name) > 50 {
		return nil, fmt.Errorf("name must be 3-50 characters: %w", domain.ErrValidation)
	}
	if len(lastName) < 3 || len(lastName) > 50 {
		return nil, fmt.Errorf("last name must be 3-50 characters: %w", domain.ErrValidation)
	}
	if !emailRe.MatchString(email) {
		return nil, fmt.Errorf("invalid email format: %w", domain.ErrValidation)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}
	now := time.Now()
	return &User{
		ID:           id,
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
