package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/campusshelf/campusshelf/pkg/binder"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, payload, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerSignup(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{userService: NewService(db)}

	t.Run("creates the account", func(t *testing.T) {
		payload := `{"username":" alice ","email":"Alice@Example.edu","password":"Secret1!","confirm_password":"Secret1!"}`
		c, rr := newTestContext(t, payload, http.MethodPost, "/api/signup")

		require.NoError(t, h.signup(c))
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp SignupResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Account created successfully!", resp.Message)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "alice@example.edu", resp.User.Email)
		assert.False(t, resp.User.DateJoined.IsZero())
		assert.NotContains(t, rr.Body.String(), "password")
	})

	t.Run("invalid username characters", func(t *testing.T) {
		payload := `{"username":"bad name!","email":"b@example.edu","password":"Secret1!","confirm_password":"Secret1!"}`
		c, _ := newTestContext(t, payload, http.MethodPost, "/api/signup")

		err := h.signup(c)
		var errResp *errcodes.Error
		require.ErrorAs(t, err, &errResp)
		assert.Equal(t, "validation_error", errResp.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		payload := `{"username":"bob","email":"not-an-email","password":"Secret1!","confirm_password":"Secret1!"}`
		c, _ := newTestContext(t, payload, http.MethodPost, "/api/signup")

		err := h.signup(c)
		var errResp *errcodes.Error
		require.ErrorAs(t, err, &errResp)
		assert.Equal(t, "validation_error", errResp.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		c, _ := newTestContext(t, `{"username":"bob"}`, http.MethodPost, "/api/signup")

		err := h.signup(c)
		assert.ErrorIs(t, err, errcodes.BadRequest("All fields are required."))
	})
}

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	h := &handler{userService: svc}

	user, err := svc.Create(context.Background(), validOptions("alice"))
	require.NoError(t, err)

	c, rr := newTestContext(t, "", http.MethodGet, "/api/users/"+strconv.Itoa(user.ID))
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(user.ID))

	require.NoError(t, h.retrieve(c))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"username":"alice"`)
	assert.NotContains(t, rr.Body.String(), "example.edu")

	c, _ = newTestContext(t, "", http.MethodGet, "/api/users/abc")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assert.ErrorIs(t, h.retrieve(c), errcodes.NotFound("User"))
}

func TestHandlerChangePassword(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	h := &handler{userService: svc}

	user, err := svc.Create(context.Background(), validOptions("alice"))
	require.NoError(t, err)

	payload := `{"current_password":"Secret1!","new_password":"Newpass2@","confirm_password":"Newpass2@"}`
	c, rr := newTestContext(t, payload, http.MethodPost, "/api/users/me/password")
	c.Set("user", user)

	require.NoError(t, h.changePassword(c))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
