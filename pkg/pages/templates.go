package pages

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/campusshelf/campusshelf/pkg/search"
)

const baseTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s | CampusShelf</title>
  <style>
    body { font-family: sans-serif; margin: 8px auto; max-width: 760px; }
    a { color: #000; text-decoration: underline; }
    .item { padding: 12px 0; border-bottom: 1px solid #ccc; }
    .item-title { font-size: 1.1em; font-weight: bold; }
    .item-meta { font-size: 0.9em; color: #666; }
    .nav { margin: 16px 0; }
    .nav-btn { display: inline-block; padding: 8px 12px; margin: 2px; border: 1px solid #000; text-decoration: none; background: none; font: inherit; cursor: pointer; }
    .flash { padding: 8px 12px; margin: 8px 0; border: 1px solid #000; }
    .flash-error, .error { border-color: #b00; color: #b00; }
    .inline { display: inline; }
    label { display: block; margin-top: 8px; }
    input[type=text], input[type=email], input[type=password], select { font-size: 16px; padding: 6px; width: 100%%; box-sizing: border-box; }
  </style>
</head>
<body>
  %s
  %s
  %s
</body>
</html>`

// page is everything the layout needs besides the content itself.
type page struct {
	title   string
	user    *models.User
	csrf    string
	flashes []Flash
}

// renderPage wraps content in the base template with the navigation bar and
// any pending flash messages.
func renderPage(p page, content string) string {
	return fmt.Sprintf(baseTemplate, html.EscapeString(p.title), navBar(p.user, p.csrf), flashList(p.flashes), content)
}

// navBar links the signed-in sections, or login and signup for visitors.
func navBar(user *models.User, csrf string) string {
	if user == nil {
		return `<div class="nav"><a href="/" class="nav-btn">CampusShelf</a> <a href="/login" class="nav-btn">Log in</a> <a href="/signup" class="nav-btn">Sign up</a></div>`
	}

	links := []string{
		`<a href="/books" class="nav-btn">Books</a>`,
		`<a href="/books/search" class="nav-btn">Search</a>`,
		`<a href="/bookshelf" class="nav-btn">My Bookshelf</a>`,
		`<a href="/donations/browse" class="nav-btn">Donations</a>`,
		`<a href="/donations/my-listings" class="nav-btn">My Listings</a>`,
		`<a href="/donations/pending-requests" class="nav-btn">My Requests</a>`,
		postForm("/logout", csrf, nil, "Log out ("+user.Username+")"),
	}
	return fmt.Sprintf(`<div class="nav">%s</div>`, strings.Join(links, " "))
}

func flashList(flashes []Flash) string {
	var b strings.Builder
	for _, f := range flashes {
		fmt.Fprintf(&b, `<div class="flash flash-%s">%s</div>`, html.EscapeString(f.Level), html.EscapeString(f.Message))
	}
	return b.String()
}

// errorBox shows a form error above the form.
func errorBox(msg string) string {
	if msg == "" {
		return ""
	}
	return fmt.Sprintf(`<div class="error flash">%s</div>`, html.EscapeString(msg))
}

// itemHTML generates an HTML item for lists. actions is raw HTML, usually
// one or more postForm buttons.
func itemHTML(title, meta, actions string) string {
	return fmt.Sprintf(`<div class="item">
  <div class="item-title">%s</div>
  <div class="item-meta">%s</div>
  %s
</div>`, html.EscapeString(title), html.EscapeString(meta), actions)
}

func bookMeta(book *models.Book) string {
	if book == nil {
		return ""
	}
	parts := []string{book.Author, book.Course}
	if book.ISBN != nil {
		parts = append(parts, "ISBN "+*book.ISBN)
	}
	return strings.Join(parts, " · ")
}

func bookTitle(book *models.Book) string {
	if book == nil {
		return ""
	}
	return book.Title
}

func username(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Username
}

// postForm renders a single button form that posts hidden fields plus the
// CSRF token to action.
func postForm(action, csrf string, fields map[string]string, label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<form action="%s" method="post" class="inline">`, html.EscapeString(action))
	b.WriteString(csrfField(csrf))
	for _, name := range sortedKeys(fields) {
		fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`, html.EscapeString(name), html.EscapeString(fields[name]))
	}
	fmt.Fprintf(&b, `<button type="submit" class="nav-btn">%s</button></form>`, html.EscapeString(label))
	return b.String()
}

func csrfField(csrf string) string {
	return fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, csrfFormField, html.EscapeString(csrf))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func textInput(label, kind, name, value string) string {
	return fmt.Sprintf(`<label>%s<input type="%s" name="%s" value="%s"></label>`,
		html.EscapeString(label), kind, name, html.EscapeString(value))
}

// tagSelect renders the bookshelf tag picker with selected preselected.
func tagSelect(selected models.BookshelfTag) string {
	var b strings.Builder
	b.WriteString(`<select name="tag">`)
	for _, tag := range models.BookshelfTags {
		sel := ""
		if tag == selected {
			sel = " selected"
		}
		fmt.Fprintf(&b, `<option value="%d"%s>%s</option>`, int(tag), sel, html.EscapeString(tag.String()))
	}
	b.WriteString(`</select>`)
	return b.String()
}

// searchForm renders the mode picker, the free text query and the advanced
// fields.
func searchForm(mode search.Mode, c search.Criteria) string {
	var opts strings.Builder
	for _, m := range search.Modes {
		sel := ""
		if m == mode {
			sel = " selected"
		}
		fmt.Fprintf(&opts, `<option value="%s"%s>%s</option>`, m, sel, html.EscapeString(m.Label()))
	}
	return fmt.Sprintf(`<form action="/books/search" method="get">
  <label>Search by<select name="mode">%s</select></label>
  %s
  <details><summary>Advanced</summary>%s%s%s</details>
  <button type="submit" class="nav-btn">Search</button>
</form>`, opts.String(),
		textInput("Query", "text", "q", c.Query),
		textInput("Title", "text", "title", c.Title),
		textInput("Author", "text", "author", c.Author),
		textInput("Course", "text", "course", c.Course))
}

// RenderError renders the error page used for HTML requests.
func RenderError(httpCode int, msg string) string {
	title := http.StatusText(httpCode)
	if title == "" {
		title = "Error " + strconv.Itoa(httpCode)
	}
	content := fmt.Sprintf(`<h1>%s</h1><p>%s</p><p><a href="/">Back to CampusShelf</a></p>`, html.EscapeString(title), html.EscapeString(msg))
	return renderPage(page{title: title}, content)
}
