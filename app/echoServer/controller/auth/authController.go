// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"carrental/app/echoServer/jwtx"
	"carrental/model"
	authsvc "carrental/service/auth"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (ct *Controller) bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	return nil
}

func (ct *Controller) internal(c echo.Context, op string, err error) error {
	ct.Log.Error(op+" failed",
		"err", err,
		"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"path", c.Path(),
		"method", c.Request().Method,
	)
	return echo.NewHTTPError(http.StatusInternalServerError, op+" failed")
}

// Register a new user
// @Summary      Register user
// @Description  Register with email, password and three security questions
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Failure      500  {object}  map[string]any "internal server error"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := ct.bindValid(c, &req); err != nil {
		return err
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			return ct.internal(c, "register", err)
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := ct.bindValid(c, &req); err != nil {
		return err
	}

	_, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrInvalidCreds:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			return ct.internal(c, "login", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
	})
}

// Recover resets a password after the security answers check out.
// @Summary      Recover password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RecoverReq  true  "Recovery payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any "wrong answer"
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/recover [post]
func (ct *Controller) Recover(c echo.Context) error {
	var req model.RecoverReq
	if err := ct.bindValid(c, &req); err != nil {
		return err
	}

	err := ct.Svc.RecoverPassword(c.Request().Context(), req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrWrongAnswer:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			return ct.internal(c, "recover", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Me
// @Summary   Current user profile
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  model.User
// @Router    /v1/users/me [get]
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	u, err := ct.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return ct.internal(c, "profile", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe
// @Summary   Update email and/or username
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     payload  body  model.UpdateProfileReq  true  "Profile fields"
// @Success   200  {object}  model.User
// @Failure   409  {object}  map[string]any
// @Router    /v1/users/me [put]
func (ct *Controller) UpdateMe(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req model.UpdateProfileReq
	if err := ct.bindValid(c, &req); err != nil {
		return err
	}

	u, err := ct.Svc.UpdateProfile(c.Request().Context(), uid, req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrEmailTaken:
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case authsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case authsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			return ct.internal(c, "update profile", err)
		}
	}
	return c.JSON(http.StatusOK, u)
}
