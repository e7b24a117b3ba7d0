// Package main car rental API.
//
// @title           Car Rental API
// @version         1.0
// @description     Car rental marketplace: listings, bookings, wallet payments and messages.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental/app/echoServer"
	authctrl "carrental/app/echoServer/controller/auth"
	bookingctrl "carrental/app/echoServer/controller/booking"
	carctrl "carrental/app/echoServer/controller/car"
	messagectrl "carrental/app/echoServer/controller/message"
	paymentctrl "carrental/app/echoServer/controller/payment"
	walletctrl "carrental/app/echoServer/controller/wallet"
	"carrental/app/echoServer/validation"
	"carrental/config"
	authrepo "carrental/repository/auth"
	bookingrepo "carrental/repository/booking"
	carrepo "carrental/repository/car"
	messagerepo "carrental/repository/message"
	paymentrepo "carrental/repository/payment"
	walletrepo "carrental/repository/wallet"
	authsvc "carrental/service/auth"
	bookingsvc "carrental/service/booking"
	carsvc "carrental/service/car"
	messagesvc "carrental/service/message"
	"carrental/service/notify"
	paymentsvc "carrental/service/payment"
	walletsvc "carrental/service/wallet"
	"carrental/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// repos
	ar := authrepo.New(db)
	cr := carrepo.New(db)
	br := bookingrepo.New(db)
	wr := walletrepo.New(db)
	pr := paymentrepo.New(db)
	mr := messagerepo.New(db)

	// events
	pub := notify.New(notify.MessageHandler(mr))

	// services
	as := authsvc.New(ar, cfg.JWTSecret, cfg.JWTTTLHours)
	cs := carsvc.New(cr)
	bs := bookingsvc.New(db.Pool, br, pub)
	ps := paymentsvc.New(db.Pool, br, wr, pr, pub)
	ws := walletsvc.New(walletStore{balances: wr, payments: pr})
	ms := messagesvc.New(db.Pool, mailbox{users: ar, Repo: mr})

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	carC := &carctrl.Controller{Svc: cs, Bookings: bs, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	walletC := &walletctrl.Controller{Svc: ws, Log: log}
	messageC := &messagectrl.Controller{Svc: ms, V: v, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e, log, cfg.MaxRequestsPerMin)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		if err := db.Pool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":  "degraded",
				"message": "database unreachable",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Car:     carC,
		Booking: bookingC,
		Payment: paymentC,
		Wallet:  walletC,
		Message: messageC,

		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
	log.Info("server stopped")
}
