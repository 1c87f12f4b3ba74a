package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type modeRequest struct {
	Auto *bool `json:"auto"`
}

func registerStatusEndpoints(rest *echo.Echo, c Controller) {
	rest.GET("/status/", func(ctx echo.Context) error {
		return ctx.JSONPretty(http.StatusOK, c.Status(), indentationChar)
	})

	rest.POST("/mode/", func(ctx echo.Context) error {
		var request modeRequest
		if err := ctx.Bind(&request); err != nil {
			return returnBadRequest(ctx, err)
		}
		if request.Auto == nil {
			return returnBadRequest(ctx, errMissingField("auto"))
		}
		if err := c.SetAutoEnabled(ctx.Request().Context(), *request.Auto); err != nil {
			return returnError(ctx, err)
		}
		return ctx.JSONPretty(http.StatusOK, c.Status(), indentationChar)
	})
}
