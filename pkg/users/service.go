package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/database"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const (
	MsgFieldsRequired    = "All fields are required."
	MsgPasswordsMismatch = "Passwords do not match."
	MsgAccountCreated    = "Account created successfully!"
)

// Service handles user operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// CreateUserOptions contains options for creating a user.
type CreateUserOptions struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Create registers a new account. Checks run in a fixed order: presence,
// password confirmation, password policy, then username and email
// uniqueness.
func (s *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	if opts.Username == "" || opts.Email == "" || opts.Password == "" || opts.ConfirmPassword == "" {
		return nil, errcodes.BadRequest(MsgFieldsRequired)
	}
	if opts.Password != opts.ConfirmPassword {
		return nil, errcodes.BadRequest(MsgPasswordsMismatch)
	}
	if err := auth.ValidatePassword(opts.Password); err != nil {
		return nil, err
	}

	// Check if username already exists
	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("username = ? COLLATE NOCASE", opts.Username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.AlreadyExists("Username")
	}

	// Check if email already exists
	exists, err = s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.AlreadyRegistered("Email")
	}

	hashedPassword, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		// a concurrent signup won the race
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "users.email") {
				return nil, errcodes.AlreadyRegistered("Email")
			}
			return nil, errcodes.AlreadyExists("Username")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Where("u.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// ChangePasswordOptions contains options for changing a password.
type ChangePasswordOptions struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword replaces the user's password after verifying the current
// one. The new password goes through the same policy as signup.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, opts ChangePasswordOptions) error {
	if opts.CurrentPassword == "" || opts.NewPassword == "" || opts.ConfirmPassword == "" {
		return errcodes.BadRequest(MsgFieldsRequired)
	}

	ok, err := s.VerifyPassword(ctx, user.ID, opts.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return errcodes.BadRequest("Current password is incorrect.")
	}
	if opts.NewPassword != opts.ConfirmPassword {
		return errcodes.BadRequest(MsgPasswordsMismatch)
	}
	if err := auth.ValidatePassword(opts.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(opts.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now()
	_, err = s.db.NewUpdate().
		Model(user).
		Column("password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// VerifyPassword checks if the password is correct for a user.
func (s *Service) VerifyPassword(ctx context.Context, userID int, password string) (bool, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Column("password_hash").
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, errcodes.NotFound("User")
		}
		return false, errors.WithStack(err)
	}

	return auth.CheckPassword(password, user.PasswordHash), nil
}
