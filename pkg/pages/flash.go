package pages

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
)

const (
	flashCookieName = "campusshelf_flash"
	flashMaxAge     = 5 * time.Minute

	// flashContextKey holds the flashes queued while handling this request.
	flashContextKey = "pages_flashes"

	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// addFlash queues msg for the next page the browser renders.
func addFlash(c echo.Context, level, msg string) {
	flashes, _ := c.Get(flashContextKey).([]Flash)
	flashes = append(flashes, Flash{Level: level, Message: msg})
	c.Set(flashContextKey, flashes)

	value, err := encodeFlashes(flashes)
	if err != nil {
		return
	}
	c.SetCookie(flashCookie(c, value, int(flashMaxAge.Seconds())))
}

// popFlashes returns the flashes carried by the request and clears the
// cookie so they're shown once.
func popFlashes(c echo.Context) []Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(flashCookie(c, "", -1))

	flashes, err := decodeFlashes(cookie.Value)
	if err != nil {
		return nil
	}
	return flashes
}

func encodeFlashes(flashes []Flash) (string, error) {
	raw, err := json.Marshal(flashes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeFlashes(value string) ([]Flash, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil, err
	}
	return flashes, nil
}

func flashCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   auth.IsSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}
