package bookshelves

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusshelf/campusshelf/pkg/binder"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEcho mounts the bookshelf handlers with user standing in for the
// auth middleware.
func newTestEcho(t *testing.T, h *handler, user *models.User) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	g := e.Group("/api/bookshelf")
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user != nil {
				c.Set("user", user)
			}
			return next(c)
		}
	})
	g.GET("", h.retrieve)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.updateTag)
	g.DELETE("/books/:bookId", h.removeBook)

	return e
}

func doRequest(e *echo.Echo, method, target, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestHandlers(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	alice := createUser(ctx, t, db, "alice")
	bob := createUser(ctx, t, db, "bob")
	book := createBook(ctx, t, db, "Statistics")

	h := &handler{bookshelfService: NewService(db)}
	asAlice := newTestEcho(t, h, alice)
	asBob := newTestEcho(t, h, bob)

	rr := doRequest(asAlice, http.MethodPost, "/api/bookshelf/items", fmt.Sprintf(`{"book_id":%d,"tag":1}`, book.ID))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var added AddItemResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.True(t, added.Created)
	assert.Equal(t, models.BookshelfTagReading, added.Item.Tag)

	t.Run("adding again retags", func(t *testing.T) {
		rr := doRequest(asAlice, http.MethodPost, "/api/bookshelf/items", fmt.Sprintf(`{"book_id":%d,"tag":3}`, book.ID))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp AddItemResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Created)
		assert.Equal(t, models.BookshelfTagOwned, resp.Item.Tag)
	})

	t.Run("missing tag", func(t *testing.T) {
		rr := doRequest(asAlice, http.MethodPost, "/api/bookshelf/items", fmt.Sprintf(`{"book_id":%d}`, book.ID))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Tag must be a valid integer between 0 and 3")
	})

	t.Run("retrieve", func(t *testing.T) {
		rr := doRequest(asAlice, http.MethodGet, "/api/bookshelf", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var resp BookshelfResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, alice.ID, resp.Bookshelf.UserID)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Statistics", resp.Items[0].Book.Title)

		rr = doRequest(asAlice, http.MethodGet, "/api/bookshelf?tag=0", "")
		require.Equal(t, http.StatusOK, rr.Code)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Items)

		rr = doRequest(asAlice, http.MethodGet, "/api/bookshelf?tag=9", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("update tag", func(t *testing.T) {
		target := fmt.Sprintf("/api/bookshelf/items/%d", added.Item.ID)

		rr := doRequest(asBob, http.MethodPatch, target, `{"tag":2}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = doRequest(asAlice, http.MethodPatch, target, `{"tag":2}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp UpdateTagResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, models.BookshelfTagRead, resp.Item.Tag)

		rr = doRequest(asAlice, http.MethodPatch, "/api/bookshelf/items/abc", `{"tag":2}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("remove", func(t *testing.T) {
		target := fmt.Sprintf("/api/bookshelf/books/%d", book.ID)

		rr := doRequest(asAlice, http.MethodDelete, target, "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = doRequest(asAlice, http.MethodDelete, target, "")
		assert.Equal(t, http.StatusNoContent, rr.Code)

		rr = doRequest(asAlice, http.MethodGet, "/api/bookshelf", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var resp BookshelfResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Items)
	})

	t.Run("anonymous", func(t *testing.T) {
		anon := newTestEcho(t, h, nil)
		rr := doRequest(anon, http.MethodGet, "/api/bookshelf", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
