package users

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func validOptions(username string) CreateUserOptions {
	return CreateUserOptions{
		Username:        username,
		Email:           username + "@example.edu",
		Password:        "Secret1!",
		ConfirmPassword: "Secret1!",
	}
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, validOptions("alice"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "Secret1!", user.PasswordHash)
	assert.True(t, auth.CheckPassword("Secret1!", user.PasswordHash))
	assert.False(t, user.CreatedAt.IsZero())
}

func TestServiceCreate_Errors(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, validOptions("alice"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*CreateUserOptions)
		code    string
		message string
	}{
		{"missing username", func(o *CreateUserOptions) { o.Username = "" }, "bad_request", "All fields are required."},
		{"missing email", func(o *CreateUserOptions) { o.Email = "" }, "bad_request", "All fields are required."},
		{"missing confirmation", func(o *CreateUserOptions) { o.ConfirmPassword = "" }, "bad_request", "All fields are required."},
		{"mismatched passwords", func(o *CreateUserOptions) { o.ConfirmPassword = "Secret2!" }, "bad_request", "Passwords do not match."},
		{"weak password", func(o *CreateUserOptions) { o.Password, o.ConfirmPassword = "secret1!", "secret1!" }, "bad_request", "Password must contain at least one uppercase letter."},
		{"taken username", func(o *CreateUserOptions) { o.Username = "ALICE" }, "already_exists", "Username already exists."},
		{"taken email", func(o *CreateUserOptions) { o.Email = "Alice@Example.edu" }, "already_exists", "Email already registered."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions("bob")
			tt.mutate(&opts)

			_, err := svc.Create(ctx, opts)
			var codeErr *errcodes.Error
			require.ErrorAs(t, err, &codeErr)
			assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
			assert.Equal(t, tt.code, codeErr.Code)
			assert.Equal(t, tt.message, codeErr.Message)
		})
	}
}

func TestServiceChangePassword(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, validOptions("alice"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, ChangePasswordOptions{
		CurrentPassword: "Wrong1!",
		NewPassword:     "Newpass2@",
		ConfirmPassword: "Newpass2@",
	})
	assert.ErrorIs(t, err, errcodes.BadRequest("Current password is incorrect."))

	err = svc.ChangePassword(ctx, user, ChangePasswordOptions{
		CurrentPassword: "Secret1!",
		NewPassword:     "short",
		ConfirmPassword: "short",
	})
	assert.ErrorIs(t, err, errcodes.BadRequest("Password must be at least 6 characters long."))

	err = svc.ChangePassword(ctx, user, ChangePasswordOptions{
		CurrentPassword: "Secret1!",
		NewPassword:     "Newpass2@",
		ConfirmPassword: "Newpass2@",
	})
	require.NoError(t, err)

	ok, err := svc.VerifyPassword(ctx, user.ID, "Newpass2@")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, user.ID, "Secret1!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceRetrieve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user, err := svc.Create(ctx, validOptions("alice"))
	require.NoError(t, err)

	found, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = svc.Retrieve(ctx, user.ID+100)
	assert.ErrorIs(t, err, errcodes.NotFound("User"))
}
