package pages

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusshelf/campusshelf/pkg/auth"
	"github.com/campusshelf/campusshelf/pkg/books"
	"github.com/campusshelf/campusshelf/pkg/bookshelves"
	"github.com/campusshelf/campusshelf/pkg/donations"
	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/campusshelf/campusshelf/pkg/search"
	"github.com/campusshelf/campusshelf/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	MsgAccountCreated = "Account created successfully! Please log in."
	MsgBookRegistered = "Book registered successfully."

	defaultNext = "/books"
)

type handler struct {
	authService      *auth.Service
	userService      *users.Service
	bookService      *books.Service
	bookshelfService *bookshelves.Service
	donationService  *donations.Service
}

func (h *handler) render(c echo.Context, status int, title, content string) error {
	p := page{
		title:   title,
		user:    auth.CurrentUser(c),
		csrf:    csrfToken(c),
		flashes: popFlashes(c),
	}
	return errors.WithStack(c.HTML(status, renderPage(p, content)))
}

func seeOther(c echo.Context, path string) error {
	return errors.WithStack(c.Redirect(http.StatusSeeOther, path))
}

// formError extracts the message of a client error so the form can be shown
// again with it. Anything else is left to the error handler.
func formError(err error) (int, string, bool) {
	var codeErr *errcodes.Error
	if !errors.As(err, &codeErr) {
		return 0, "", false
	}
	if codeErr.HTTPCode < 400 || codeErr.HTTPCode >= 500 || codeErr.HTTPCode == http.StatusNotFound {
		return 0, "", false
	}
	return codeErr.HTTPCode, codeErr.Message, true
}

// flashOrFail turns client errors from a form action into an error flash.
func flashOrFail(c echo.Context, err error) error {
	if _, msg, ok := formError(err); ok {
		addFlash(c, FlashError, msg)
		return nil
	}
	return errors.WithStack(err)
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return defaultNext
	}
	return next
}

func (h *handler) landing(c echo.Context) error {
	if auth.CurrentUser(c) != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, defaultNext))
	}

	content := `<h1>CampusShelf</h1>
<p>Find the textbooks your courses need and pass yours on to other students when you're done.</p>
<p><a href="/signup" class="nav-btn">Create an account</a> <a href="/login" class="nav-btn">Log in</a></p>`
	return h.render(c, http.StatusOK, "Welcome", content)
}

func (h *handler) signupPage(c echo.Context, status int, params users.SignupPayload, errMsg string) error {
	var reqs strings.Builder
	for _, r := range auth.PasswordRequirements() {
		fmt.Fprintf(&reqs, "<li>%s</li>", html.EscapeString(r))
	}

	content := fmt.Sprintf(`<h1>Sign up</h1>
%s
<form action="/signup" method="post">
  %s%s%s%s%s
  <ul>%s</ul>
  <button type="submit" class="nav-btn">Sign up</button>
</form>
<p>Already have an account? <a href="/login">Log in</a></p>`,
		errorBox(errMsg),
		csrfField(csrfToken(c)),
		textInput("Username", "text", "username", params.Username),
		textInput("Email", "email", "email", params.Email),
		textInput("Password", "password", "password", ""),
		textInput("Confirm password", "password", "confirm_password", ""),
		reqs.String())
	return h.render(c, status, "Sign up", content)
}

func (h *handler) signupForm(c echo.Context) error {
	return h.signupPage(c, http.StatusOK, users.SignupPayload{}, "")
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := users.SignupPayload{}
	if err := c.Bind(&params); err != nil {
		if status, msg, ok := formError(err); ok {
			return h.signupPage(c, status, params, msg)
		}
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, users.CreateUserOptions(params))
	if err != nil {
		if status, msg, ok := formError(err); ok {
			return h.signupPage(c, status, params, msg)
		}
		return errors.WithStack(err)
	}

	log.Info("account created", logger.Data{"user_id": user.ID})

	addFlash(c, FlashSuccess, MsgAccountCreated)
	return seeOther(c, auth.LoginPath)
}

func (h *handler) loginPage(c echo.Context, status int, username, next, errMsg string) error {
	content := fmt.Sprintf(`<h1>Log in</h1>
%s
<form action="/login" method="post">
  %s
  <input type="hidden" name="next" value="%s">
  %s%s
  <button type="submit" class="nav-btn">Log in</button>
</form>
<p>New here? <a href="/signup">Sign up</a></p>`,
		errorBox(errMsg),
		csrfField(csrfToken(c)),
		html.EscapeString(next),
		textInput("Username", "text", "username", username),
		textInput("Password", "password", "password", ""))
	return h.render(c, status, "Log in", content)
}

func (h *handler) loginForm(c echo.Context) error {
	return h.loginPage(c, http.StatusOK, "", c.QueryParam("next"), "")
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := auth.LoginPayload{}
	if err := c.Bind(&params); err != nil {
		if status, msg, ok := formError(err); ok {
			return h.loginPage(c, status, params.Username, params.Next, msg)
		}
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		if status, msg, ok := formError(err); ok {
			return h.loginPage(c, status, params.Username, params.Next, msg)
		}
		return errors.WithStack(err)
	}

	if err := h.authService.StartSession(c, user); err != nil {
		return errors.WithStack(err)
	}

	addFlash(c, FlashSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	return seeOther(c, safeNext(params.Next))
}

func (h *handler) logout(c echo.Context) error {
	auth.ClearSessionCookie(c)
	addFlash(c, FlashSuccess, auth.MsgLoggedOut)
	return seeOther(c, auth.LoginPath)
}

// bookActions renders the shelf and donate forms shown next to every book.
func bookActions(csrf string, book *models.Book) string {
	id := strconv.Itoa(book.ID)
	shelf := fmt.Sprintf(`<form action="/bookshelf/add" method="post" class="inline">%s<input type="hidden" name="book_id" value="%s">%s<button type="submit" class="nav-btn">Add to bookshelf</button></form>`,
		csrfField(csrf), id, tagSelect(models.BookshelfTagWantToRead))
	donate := postForm("/donations/add", csrf, map[string]string{"book_id": id}, "Donate my copy")
	return shelf + " " + donate
}

func bookList(csrf string, list []*models.Book) string {
	if len(list) == 0 {
		return "<p>No books found.</p>"
	}
	var b strings.Builder
	for _, book := range list {
		b.WriteString(itemHTML(book.Title, bookMeta(book), bookActions(csrf, book)))
	}
	return b.String()
}

func (h *handler) bookList(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.bookService.List(ctx, books.ListBooksOptions{})
	if err != nil {
		return errors.WithStack(err)
	}

	var content strings.Builder
	content.WriteString(`<h1>Books</h1><p><a href="/books/register" class="nav-btn">Register a book</a></p>`)
	content.WriteString(bookList(csrfToken(c), list))
	return h.render(c, http.StatusOK, "Books", content.String())
}

func (h *handler) registerPage(c echo.Context, status int, params books.CreateBookPayload, errMsg string) error {
	isbnValue := ""
	if params.ISBN != nil {
		isbnValue = *params.ISBN
	}
	content := fmt.Sprintf(`<h1>Register a book</h1>
%s
<form action="/books/register" method="post">
  %s%s%s%s%s
  <button type="submit" class="nav-btn">Register</button>
</form>`,
		errorBox(errMsg),
		csrfField(csrfToken(c)),
		textInput("Title", "text", "title", params.Title),
		textInput("Author", "text", "author", params.Author),
		textInput("Course", "text", "course", params.Course),
		textInput("ISBN (optional)", "text", "isbn", isbnValue))
	return h.render(c, status, "Register a book", content)
}

func (h *handler) registerForm(c echo.Context) error {
	return h.registerPage(c, http.StatusOK, books.CreateBookPayload{}, "")
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := books.CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		if status, msg, ok := formError(err); ok {
			return h.registerPage(c, status, params, msg)
		}
		return errors.WithStack(err)
	}

	book, err := h.bookService.Create(ctx, books.CreateBookOptions(params))
	if err != nil {
		if status, msg, ok := formError(err); ok {
			return h.registerPage(c, status, params, msg)
		}
		return errors.WithStack(err)
	}

	log.Info("book registered", logger.Data{"book_id": book.ID, "has_isbn": book.ISBN != nil})

	addFlash(c, FlashSuccess, MsgBookRegistered)
	return seeOther(c, "/books")
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := books.SearchBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	criteria := search.Criteria{
		Query:  params.Query,
		Title:  params.Title,
		Author: params.Author,
		Course: params.Course,
	}
	list, mode, err := h.bookService.Search(ctx, books.SearchBooksOptions{
		Mode:     params.Mode,
		Criteria: criteria,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	var content strings.Builder
	content.WriteString("<h1>Search books</h1>")
	content.WriteString(searchForm(mode, criteria))
	fmt.Fprintf(&content, "<p>Found %d books (%s)</p>", len(list), html.EscapeString(mode.Label()))
	content.WriteString(bookList(csrfToken(c), list))
	return h.render(c, http.StatusOK, "Search books", content.String())
}

func (h *handler) bookshelf(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	csrf := csrfToken(c)

	opts := bookshelves.ListItemsOptions{}
	filter := c.QueryParam("tag")
	if filter != "" {
		tag, err := models.ParseBookshelfTag(filter)
		if err != nil {
			return errcodes.BadRequest(err.Error())
		}
		opts.Tag = &tag
	}

	shelf, err := h.bookshelfService.GetOrCreateForUser(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	opts.BookshelfID = shelf.ID

	items, err := h.bookshelfService.ListItems(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	var content strings.Builder
	content.WriteString("<h1>My Bookshelf</h1>")
	content.WriteString(`<div class="nav"><a href="/bookshelf" class="nav-btn">All</a>`)
	for _, tag := range models.BookshelfTags {
		fmt.Fprintf(&content, ` <a href="/bookshelf?tag=%d" class="nav-btn">%s</a>`, int(tag), html.EscapeString(tag.String()))
	}
	content.WriteString(`</div>`)

	if len(items) == 0 {
		content.WriteString("<p>Your bookshelf is empty.</p>")
	}
	for _, item := range items {
		retag := fmt.Sprintf(`<form action="/bookshelf/items/%d/tag" method="post" class="inline">%s%s<button type="submit" class="nav-btn">Update</button></form>`,
			item.ID, csrfField(csrf), tagSelect(item.Tag))
		remove := postForm(fmt.Sprintf("/bookshelf/remove/%d", item.BookID), csrf, nil, "Remove")
		meta := item.Tag.String() + " · " + bookMeta(item.Book)
		content.WriteString(itemHTML(bookTitle(item.Book), meta, retag+" "+remove))
	}
	return h.render(c, http.StatusOK, "My Bookshelf", content.String())
}

func (h *handler) addToBookshelf(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	params := bookshelves.AddItemPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tag, err := bookshelves.ParseTag(params.Tag)
	if err != nil {
		if err := flashOrFail(c, err); err != nil {
			return err
		}
		return seeOther(c, "/books")
	}

	shelf, err := h.bookshelfService.GetOrCreateForUser(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	item, created, err := h.bookshelfService.AddOrUpdateItem(ctx, bookshelves.AddOrUpdateItemOptions{
		BookshelfID: shelf.ID,
		BookID:      params.BookID,
		Tag:         tag,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if created {
		addFlash(c, FlashSuccess, fmt.Sprintf("Added %q to your bookshelf.", bookTitle(item.Book)))
	} else {
		addFlash(c, FlashSuccess, fmt.Sprintf("Moved %q to %s.", bookTitle(item.Book), item.Tag))
	}
	return seeOther(c, "/bookshelf")
}

func (h *handler) updateBookshelfTag(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Item")
	}

	params := bookshelves.UpdateTagPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	tag, err := bookshelves.ParseTag(params.Tag)
	if err == nil {
		_, err = h.bookshelfService.UpdateTag(ctx, bookshelves.UpdateTagOptions{
			ItemID: id,
			UserID: user.ID,
			Tag:    tag,
		})
	}
	if err != nil {
		if err := flashOrFail(c, err); err != nil {
			return err
		}
	}
	return seeOther(c, "/bookshelf")
}

func (h *handler) removeFromBookshelf(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookshelfService.RemoveBook(ctx, user.ID, bookID); err != nil {
		return errors.WithStack(err)
	}
	return seeOther(c, "/bookshelf")
}

func listingMeta(l *models.DonationListing) string {
	meta := l.Status.Label() + " · donated by " + username(l.Donor)
	if l.Requester != nil {
		meta += " · requested by " + username(l.Requester)
	}
	return meta
}

func (h *handler) listingsPage(c echo.Context, title, empty string, listings []*models.DonationListing, actions func(*models.DonationListing) string) error {
	var content strings.Builder
	fmt.Fprintf(&content, "<h1>%s</h1>", html.EscapeString(title))
	if len(listings) == 0 {
		fmt.Fprintf(&content, "<p>%s</p>", html.EscapeString(empty))
	}
	for _, l := range listings {
		content.WriteString(itemHTML(bookTitle(l.Book), listingMeta(l), actions(l)))
	}
	return h.render(c, http.StatusOK, title, content.String())
}

func listingFields(l *models.DonationListing) map[string]string {
	return map[string]string{"listing_id": strconv.Itoa(l.ID)}
}

// listingActions renders the buttons user may press on l. Each transition is
// offered only when its guard would let it through.
func listingActions(l *models.DonationListing, user *models.User, csrf string) string {
	var actions []string
	if l.CanRequest(user) {
		actions = append(actions, postForm("/donations/request", csrf, listingFields(l), "Request"))
	}
	if l.CanCancel(user) {
		actions = append(actions, postForm("/donations/cancel", csrf, listingFields(l), "Cancel request"))
	}
	if l.CanApprove(user) {
		actions = append(actions, postForm("/donations/approve", csrf, listingFields(l), "Approve"))
	}
	if l.CanReject(user) {
		actions = append(actions, postForm("/donations/reject", csrf, listingFields(l), "Reject"))
	}
	if l.IsDonor(user) {
		actions = append(actions, postForm("/donations/delete", csrf, map[string]string{"book_id": strconv.Itoa(l.BookID)}, "Delete"))
	}
	return strings.Join(actions, " ")
}

func (h *handler) myListings(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	csrf := csrfToken(c)

	listings, err := h.donationService.MyListings(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.listingsPage(c, "My Listings", "You haven't listed any books for donation.", listings, func(l *models.DonationListing) string {
		return listingActions(l, user, csrf)
	})
}

func (h *handler) pendingRequests(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	csrf := csrfToken(c)

	listings, err := h.donationService.PendingRequests(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.listingsPage(c, "My Requests", "You have no pending requests.", listings, func(l *models.DonationListing) string {
		return listingActions(l, user, csrf)
	})
}

func (h *handler) browseDonations(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)
	csrf := csrfToken(c)

	listings, err := h.donationService.Browse(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return h.listingsPage(c, "Donations", "No books are up for donation right now.", listings, func(l *models.DonationListing) string {
		return listingActions(l, user, csrf)
	})
}

func (h *handler) addListing(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	params := donations.BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	listing, err := h.donationService.AddListing(ctx, donations.ListingOptions{
		BookID:  params.BookID,
		DonorID: user.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	addFlash(c, FlashSuccess, fmt.Sprintf("%q is listed for donation.", bookTitle(listing.Book)))
	return seeOther(c, "/donations/my-listings")
}

func (h *handler) deleteListing(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	params := donations.BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	err := h.donationService.DeleteListing(ctx, donations.ListingOptions{
		BookID:  params.BookID,
		DonorID: user.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return seeOther(c, "/donations/my-listings")
}

// donationAction builds the form handler for one state machine operation.
// Guard failures are flashed on the page the browser is sent back to.
func (h *handler) donationAction(apply donations.Transition, success, redirectTo string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		params := donations.ListingPayload{}
		if err := c.Bind(&params); err != nil {
			return errors.WithStack(err)
		}

		_, err := apply(h.donationService, ctx, donations.TransitionOptions{
			ListingID: params.ListingID,
			Actor:     auth.CurrentUser(c),
		})
		if err != nil {
			if err := flashOrFail(c, err); err != nil {
				return err
			}
			return seeOther(c, redirectTo)
		}

		addFlash(c, FlashSuccess, success)
		return seeOther(c, redirectTo)
	}
}
