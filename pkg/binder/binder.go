package binder

import (
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/creasty/defaults"
	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

// Context keys a handler can set before calling Bind to relax its defaults.
const (
	ContextKeyAllowEmptyBody     = "binder_allow_empty_body"
	ContextKeyAllowUnknownFields = "binder_allow_unknown_fields"
)

var unknownJSONFieldRE = regexp.MustCompile(`^json: unknown field "(.*)"$`)

// Binder implements echo.Binder for CampusShelf's request structs. Payloads
// are decoded from JSON, forms or the query string, then trimmed by mold,
// filled with defaults and validated.
type Binder struct {
	query    *schema.Decoder
	form     *schema.Decoder
	conform  *mold.Transformer
	validate *validator.Validate
}

func New() (*Binder, error) {
	query := schema.NewDecoder()
	query.SetAliasTag("query")

	form := schema.NewDecoder()
	form.SetAliasTag("form")
	// HTML forms carry fields the handler doesn't bind, like the CSRF token.
	form.IgnoreUnknownKeys(true)

	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	if err := validate.RegisterValidation("username", usernameValidator); err != nil {
		return nil, errors.WithStack(err)
	}

	return &Binder{
		query:    query,
		form:     form,
		conform:  modifiers.New(),
		validate: validate,
	}, nil
}

// jsonFieldName names struct fields in validation messages the way clients
// see them on the wire.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func (b *Binder) Bind(i interface{}, c echo.Context) error {
	if err := b.decode(i, c); err != nil {
		return err
	}

	if err := b.conform.Struct(c.Request().Context(), i); err != nil {
		return errors.WithStack(err)
	}
	if err := defaults.Set(i); err != nil {
		return errors.WithStack(err)
	}

	err := b.validate.Struct(i)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errcodes.ValidationError(formatValidationError(verrs[0]))
	}
	return errors.WithStack(err)
}

// decode fills i from whichever source the request carries.
func (b *Binder) decode(i interface{}, c echo.Context) error {
	req := c.Request()

	if req.ContentLength == 0 {
		if req.Method == http.MethodGet || req.Method == http.MethodDelete {
			return b.decodeValues(i, c.QueryParams(), b.query)
		}
		if allowed, _ := c.Get(ContextKeyAllowEmptyBody).(bool); allowed {
			return nil
		}
		return errcodes.EmptyRequestBody()
	}

	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		return b.decodeJSON(i, c)
	case strings.HasPrefix(ctype, echo.MIMEApplicationForm), strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		params, err := c.FormParams()
		if err != nil {
			return errcodes.MalformedPayload()
		}
		return b.decodeValues(i, params, b.form)
	default:
		return errcodes.UnsupportedMediaType()
	}
}

// decodeJSON accepts exactly one JSON value in the body.
func (b *Binder) decodeJSON(i interface{}, c echo.Context) error {
	body := c.Request().Body
	defer body.Close()

	dec := json.NewDecoder(body)
	if allowed, _ := c.Get(ContextKeyAllowUnknownFields).(bool); !allowed {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(i); err != nil {
		if field, ok := unknownJSONField(err); ok {
			return errcodes.UnknownParameter(field)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return errcodes.ValidationTypeError(formatUnmarshalTypeError(typeErr))
		}
		logger.FromEchoContext(c).Err(err).Warn("undecodable json payload")
		return errcodes.MalformedPayload()
	}
	if dec.More() {
		return errcodes.MalformedPayload()
	}
	return nil
}

func unknownJSONField(err error) (string, bool) {
	m := unknownJSONFieldRE.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// decodeValues reports the error of the alphabetically first failing key, so
// the same bad request always produces the same message.
func (b *Binder) decodeValues(i interface{}, params url.Values, decoder *schema.Decoder) error {
	err := decoder.Decode(i, params)
	if err == nil {
		return nil
	}

	var multi schema.MultiError
	if !errors.As(err, &multi) || len(multi) == 0 {
		return errors.WithStack(err)
	}
	keys := make([]string, 0, len(multi))
	for key := range multi {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	first := multi[keys[0]]

	var conv schema.ConversionError
	if errors.As(first, &conv) {
		return errcodes.ValidationTypeError(formatSchemaConversionError(conv))
	}
	var unknown schema.UnknownKeyError
	if errors.As(first, &unknown) {
		return errcodes.UnknownParameter(unknown.Key)
	}
	return errors.WithStack(first)
}
