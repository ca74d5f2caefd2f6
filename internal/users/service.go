package users

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"usercalc/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the given id or email.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when a create or update would duplicate an email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalid wraps all field validation failures.
	ErrInvalid = errors.New("invalid user data")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks the user's fields against the API's field rules.
// The returned error wraps ErrInvalid.
func Validate(u *models.User) error {
	if strings.TrimSpace(u.Name) == "" || len(u.Name) > 100 {
		return fmt.Errorf("%w: name must be between 1 and 100 characters", ErrInvalid)
	}
	if !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("%w: malformed email address", ErrInvalid)
	}
	if u.Age < 0 || u.Age > 150 {
		return fmt.Errorf("%w: age must be between 0 and 150", ErrInvalid)
	}
	return nil
}

// CreateParams holds the fields required to create a user.
type CreateParams struct {
	Name  string
	Email string
	Age   int
}

// UpdateParams holds the fields an update may touch. Nil fields are
// left unchanged, so callers only set what the request provided.
type UpdateParams struct {
	Name  *string
	Email *string
	Age   *int
}

// Service owns all user persistence and validation rules. Handlers and
// the auth layer go through it rather than touching gorm directly.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns all users ordered by id.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the user with the given id or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user with the given email or ErrNotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create validates and persists a new user. Duplicate emails are
// rejected with ErrEmailTaken before hitting the unique index.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	u := models.User{Name: p.Name, Email: p.Email, Age: p.Age}
	if err := Validate(&u); err != nil {
		return nil, err
	}
	if _, err := s.GetByEmail(ctx, u.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies the provided fields to an existing user, re-validates
// and persists. Changing the email to one owned by a different user
// fails with ErrEmailTaken; an empty update returns the current record.
func (s *Service) Update(ctx context.Context, id int64, p UpdateParams) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		existing, err := s.GetByEmail(ctx, *p.Email)
		if err == nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		u.Email = *p.Email
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if err := Validate(u); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes the user with the given id, returning ErrNotFound
// when there is nothing to delete.
func (s *Service) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
