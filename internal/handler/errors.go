package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// writeError turns a domain or repository error into the JSON error
// response {"error", "code"} with a matching status.  Unknown errors are
// logged and reported as 500 without details.
func writeError(c echo.Context, err error) error {
	var (
		invalidRange *booking.InvalidRangeError
		unavailable  *booking.UnavailableRangeError
		capacity     *booking.CapacityExceededError
		transition   *booking.InvalidTransitionError
		notEligible  *booking.NotEligibleError
		validation   *booking.ValidationError
	)
	switch {
	case errors.As(err, &invalidRange):
		return fail(c, http.StatusBadRequest, "invalid_range", err)
	case errors.As(err, &unavailable):
		body := echo.Map{"error": err.Error(), "code": "unavailable"}
		if !unavailable.Night.IsZero() {
			body["night"] = unavailable.Night.Format(booking.DateLayout)
		}
		if unavailable.ConflictID != 0 {
			body["conflict_id"] = unavailable.ConflictID
		}
		return c.JSON(http.StatusConflict, body)
	case errors.As(err, &capacity):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": err.Error(), "code": "capacity_exceeded", "limit": capacity.Limit,
		})
	case errors.As(err, &transition):
		return fail(c, http.StatusConflict, "invalid_transition", err)
	case errors.As(err, &notEligible):
		return fail(c, http.StatusConflict, "not_eligible", err)
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(), "code": "validation", "field": validation.Field,
		})
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrOverlap):
		return fail(c, http.StatusConflict, "unavailable", err)
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrUsernameExists):
		return fail(c, http.StatusConflict, "conflict", err)
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out", "code": "timeout"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": "internal"})
}

func fail(c echo.Context, status int, code string, err error) error {
	return c.JSON(status, echo.Map{"error": err.Error(), "code": code})
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, &booking.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &booking.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return n, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (time.Time, error) {
	s := c.QueryParam(name)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := booking.ParseDate(s)
	if err != nil {
		return time.Time{}, &booking.ValidationError{Field: name, Reason: "must be a date (YYYY-MM-DD)"}
	}
	return d, nil
}
