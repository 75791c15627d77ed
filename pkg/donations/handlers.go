package donations

import (
	"net/http"
	"strconv"

	"github.com/campusshelf/campusshelf/pkg/errcodes"
	"github.com/campusshelf/campusshelf/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

type handler struct {
	donationService *Service
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get("user").(*models.User)
	if !ok {
		return nil, errcodes.Unauthorized("Authentication required")
	}
	return user, nil
}

func (h *handler) myListings(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.donationService.MyListings(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ListListingsResponse{listings}))
}

func (h *handler) pendingRequests(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.donationService.PendingRequests(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ListListingsResponse{listings}))
}

func (h *handler) browse(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listings, err := h.donationService.Browse(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, ListListingsResponse{listings}))
}

func (h *handler) addListing(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	listing, err := h.donationService.AddListing(ctx, ListingOptions{
		BookID:  params.BookID,
		DonorID: user.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Info("donation listed", logger.Data{"listing_id": listing.ID, "book_id": listing.BookID})

	return errors.WithStack(c.JSON(http.StatusOK, listing))
}

func (h *handler) deleteListing(c echo.Context) error {
	ctx := c.Request().Context()

	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.donationService.DeleteListing(ctx, ListingOptions{
		BookID:  bookID,
		DonorID: user.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// transition builds a handler that applies one state machine operation to
// the listing named in the path.
func (h *handler) transition(apply Transition, action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := logger.FromContext(c.Request().Context())

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return errcodes.NotFound("Listing")
		}

		user, err := currentUser(c)
		if err != nil {
			return err
		}

		listing, err := apply(h.donationService, ctx, TransitionOptions{
			ListingID: id,
			Actor:     user,
		})
		if err != nil {
			return errors.WithStack(err)
		}

		log.Info("donation "+action, logger.Data{"listing_id": listing.ID, "status": listing.Status})

		return errors.WithStack(c.JSON(http.StatusOK, listing))
	}
}
