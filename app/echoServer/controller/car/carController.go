package car

import (
	"errors"
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	"carrental/app/echoServer/validation"
	"carrental/model"
	bookingsvc "carrental/service/booking"
	carsvc "carrental/service/car"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc      carsvc.Service
	Bookings bookingsvc.Service
	V        *validator.Validate
	Log      *slog.Logger
}

// POST /v1/cars
func (h *Controller) Create(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req CreateCarReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}

	car, err := h.Svc.Create(c.Request().Context(), uid, model.Car{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PricePerDay: req.PricePerDay,
		Location:    req.Location,
	})
	if err != nil {
		var ve carsvc.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "validation error",
				"errors":  echo.Map{ve.Field: ve.Reason},
			})
		}
		h.Log.Error("car create error", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, car)
}

// GET /v1/cars?location=
func (h *Controller) List(c echo.Context) error {
	cars, err := h.Svc.List(c.Request().Context(), c.QueryParam("location"))
	if err != nil {
		h.Log.Error("car list error", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": cars})
}

// GET /v1/cars/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := jwtx.ParamID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	car, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, carsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "car not found"})
		}
		h.Log.Error("car detail error", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, car)
}

// GET /v1/cars/:id/availability?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Controller) Availability(c echo.Context) error {
	id, err := jwtx.ParamID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var q AvailabilityQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid query"})
	}
	if err := h.V.Struct(q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}
	start, end, err := model.ParseDateRange(q.Start, q.End)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	ok, err := h.Bookings.IsAvailable(c.Request().Context(), id, start, end)
	if err != nil {
		if bookingsvc.Code(err) == bookingsvc.ErrInvalidRange {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "start date must be before end date"})
		}
		h.Log.Error("availability error", "err", err, "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"car_id":     id,
		"start_date": q.Start,
		"end_date":   q.End,
		"available":  ok,
	})
}
