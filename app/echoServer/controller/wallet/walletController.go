package wallet

import (
	"errors"
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	"carrental/service/wallet"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc wallet.Service
	Log *slog.Logger
}

// GET /v1/wallet
// @Summary Balance and payment history of the caller
// @Success 200 {object} model.Wallet
// @Failure 401,404,500
func (h *Controller) Get(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	w, err := h.Svc.Wallet(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, wallet.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("wallet", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, w)
}
