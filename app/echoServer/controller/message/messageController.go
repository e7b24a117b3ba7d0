package message

import (
	"errors"
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	"carrental/app/echoServer/validation"
	msgsvc "carrental/service/message"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc msgsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/messages
func (h *Controller) Send(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req SendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}

	m, err := h.Svc.Send(c.Request().Context(), uid, req.ReceiverEmail, req.Content)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, m)
	case errors.Is(err, msgsvc.ErrReceiverNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "receiver not found"})
	case errors.Is(err, msgsvc.ErrSelfMessage), errors.Is(err, msgsvc.ErrEmptyContent):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	default:
		h.Log.Error("message send", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// ownPath allows /users/:id/... only for the caller's own id. When it
// reports false the response has been written.
func ownPath(c echo.Context) (int64, bool, error) {
	id, err := jwtx.ParamID(c, "id")
	if err != nil {
		return 0, false, c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return 0, false, c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if uid != id {
		return 0, false, c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	return id, true, nil
}

// GET /v1/users/:id/messages
func (h *Controller) Inbox(c echo.Context) error {
	id, ok, err := ownPath(c)
	if !ok {
		return err
	}
	rows, err := h.Svc.Inbox(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("inbox", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id/sent_messages
func (h *Controller) Sent(c echo.Context) error {
	id, ok, err := ownPath(c)
	if !ok {
		return err
	}
	rows, err := h.Svc.Sent(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("sent messages", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
