package booking

import (
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	"carrental/app/echoServer/validation"
	"carrental/model"
	bs "carrental/service/booking"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// StatusFor maps a booking error code onto an HTTP status and client message.
func StatusFor(code bs.ErrCode) (int, string) {
	switch code {
	case bs.ErrInvalidRange:
		return http.StatusBadRequest, "start date must be before end date"
	case bs.ErrCarNotFound:
		return http.StatusNotFound, "car not found"
	case bs.ErrBookingNotFound:
		return http.StatusNotFound, "booking not found"
	case bs.ErrConflictingBooking:
		return http.StatusConflict, "car is already booked for these dates"
	case bs.ErrUnauthorized:
		return http.StatusForbidden, "forbidden"
	case bs.ErrInvalidTransition:
		return http.StatusConflict, "booking is not pending"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	status, msg := StatusFor(bs.Code(err))
	if status == http.StatusInternalServerError {
		h.Log.Error(op, "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
	}
	return c.JSON(status, echo.Map{"message": msg})
}

// POST /v1/bookings
func (h *Controller) Create(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}
	start, end, err := model.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	b, err := h.Svc.Create(c.Request().Context(), uid, req.CarID, start, end)
	if err != nil {
		return h.fail(c, "booking create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/bookings/my
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyBookings(c.Request().Context(), uid)
	if err != nil {
		return h.fail(c, "booking history", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// POST /v1/bookings/:id/confirm
func (h *Controller) Confirm(c echo.Context) error {
	id, err := jwtx.ParamID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	b, err := h.Svc.Confirm(c.Request().Context(), uid, id)
	if err != nil {
		return h.fail(c, "booking confirm", err)
	}
	return c.JSON(http.StatusOK, b)
}
