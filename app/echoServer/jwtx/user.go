// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

const ctxUserID = "user_id"

func SetUserID(c echo.Context, id int64) { c.Set(ctxUserID, id) }

func UserIDFromContext(c echo.Context) (int64, error) {
	id, ok := c.Get(ctxUserID).(int64)
	if !ok || id <= 0 {
		return 0, errors.New("no user in context")
	}
	return id, nil
}

// ParamID parses a positive numeric path parameter.
func ParamID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
