package payment

import (
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	paymentsvc "carrental/service/payment"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/bookings/:id/pay
func (h *Controller) Pay(c echo.Context) error {
	id, err := jwtx.ParamID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	bal, err := h.Svc.PayForBooking(c.Request().Context(), uid, id)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "booking not found"})
		case paymentsvc.ErrUnauthorized:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the renter can pay for a booking"})
		case paymentsvc.ErrInsufficientFunds:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "insufficient funds"})
		case paymentsvc.ErrInvalidParticipants:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payment participants"})
		default:
			h.Log.Error("payment error", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "payment successful",
		"booking_id":  id,
		"new_balance": bal.StringFixed(2),
	})
}
