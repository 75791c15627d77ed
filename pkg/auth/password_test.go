package auth

import (
	"testing"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		message  string
	}{
		{"valid", "Abcde1!", ""},
		{"valid at max length", "Abcdefghijk12!x", ""},
		{"space counts as special", "Abc de1", ""},
		{"empty", "", "Password is required."},
		{"too short", "Ab1!", "Password must be at least 6 characters long."},
		{"too long", "Abcdefghijk12!xy", "Password must be no more than 15 characters long."},
		{"no uppercase", "abcde1!", "Password must contain at least one uppercase letter."},
		{"no lowercase", "ABCDE1!", "Password must contain at least one lowercase letter."},
		{"no digit", "Abcdef!", "Password must contain at least one digit."},
		{"no special", "Abcdef1", "Password must contain at least one special character."},
		{"length is checked first", "ab", "Password must be at least 6 characters long."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			var codeErr *errcodes.Error
			require.ErrorAs(t, err, &codeErr)
			assert.Equal(t, 400, codeErr.HTTPCode)
			assert.Equal(t, tt.message, codeErr.Message)
		})
	}
}

func TestPasswordRequirements(t *testing.T) {
	t.Parallel()

	reqs := PasswordRequirements()
	require.Len(t, reqs, 5)
	assert.Equal(t, "Between 6 and 15 characters long", reqs[0])
	assert.Equal(t, "Contains at least one special character (!@#$%^&*, etc.)", reqs[4])
}
