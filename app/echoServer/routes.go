package echoServer

import (
	"log/slog"
	"net/http"

	"carrental/app/echoServer/controller/auth"
	"carrental/app/echoServer/controller/booking"
	"carrental/app/echoServer/controller/car"
	"carrental/app/echoServer/controller/message"
	"carrental/app/echoServer/controller/payment"
	"carrental/app/echoServer/controller/wallet"
	"carrental/app/echoServer/jwtx"
	jwtutil "carrental/util/jwt"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Car       *car.Controller
	Booking   *booking.Controller
	Payment   *payment.Controller
	Wallet    *wallet.Controller
	Message   *message.Controller
	JWTSecret string
	Log       *slog.Logger
}

// JWT validates the bearer token signature and expiry and stores the
// subject as user_id.
func JWT(secret string, log *slog.Logger) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtutil.ParseAuth(token, secret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn("auth rejected",
				"err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"ip", c.RealIP(),
			)
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	})
	setUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("user").(int64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			jwtx.SetUserID(c, uid)
			return next(c)
		}
	}
	return []echo.MiddlewareFunc{verify, setUser}
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/users/recover", c.Auth.Recover)

	pub.GET("/cars", c.Car.List)
	pub.GET("/cars/:id", c.Car.Detail)
	pub.GET("/cars/:id/availability", c.Car.Availability)

	// Auth
	priv := e.Group("/v1", JWT(c.JWTSecret, c.Log)...)

	priv.GET("/users/me", c.Auth.Me)
	priv.PUT("/users/me", c.Auth.UpdateMe)

	priv.POST("/cars", c.Car.Create)

	priv.POST("/bookings", c.Booking.Create)
	priv.GET("/bookings/my", c.Booking.My)
	priv.POST("/bookings/:id/confirm", c.Booking.Confirm)
	priv.POST("/bookings/:id/pay", c.Payment.Pay)

	priv.GET("/wallet", c.Wallet.Get)

	priv.POST("/messages", c.Message.Send)
	priv.GET("/users/:id/messages", c.Message.Inbox)
	priv.GET("/users/:id/sent_messages", c.Message.Sent)
}
