package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/fan2bmc/internal/controller"
	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	urlParamZone    = "zone"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// Controller is the part of controller.FanController exposed by the REST API
type Controller interface {
	Status() controller.Status
	SetAutoEnabled(ctx context.Context, enabled bool) error
	CommitManualDuty(ctx context.Context, zone fans.FanZone, duty int) (fans.ActuationResult, error)
	SetCurve(ctx context.Context, curve curves.FanCurve) error
	ResetToBmcAuto(ctx context.Context) (fans.ActuationResult, error)
}

// CreateRestService creates the REST API for the given controller.
// Request metrics are registered with registerer, pass nil to disable them.
func CreateRestService(c Controller, registerer prometheus.Registerer) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true
	echoRest.HidePort = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())
	if registerer != nil {
		echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "fan2bmc",
			Subsystem:  "api",
			Registerer: registerer,
		}))
	}

	echoRest.GET("/alive/", isAlive)

	registerStatusEndpoints(echoRest, c)
	registerCurveEndpoints(echoRest, c)
	registerFanEndpoints(echoRest, c)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	status := http.StatusInternalServerError
	name := "Unknown Error"
	switch {
	case errors.Is(e, controller.ErrManualModeRequired):
		status = http.StatusConflict
		name = "Conflict"
	case errors.Is(e, controller.ErrStopped):
		status = http.StatusServiceUnavailable
		name = "Unavailable"
	}
	return c.JSONPretty(status, &Result{
		Name:    name,
		Message: e.Error(),
	}, indentationChar)
}

// return the outcome of a BMC command, a failed command is reported as bad gateway
func returnActuationResult(c echo.Context, result fans.ActuationResult) error {
	status := http.StatusOK
	if !result.Succeeded {
		status = http.StatusBadGateway
	}
	return c.JSONPretty(status, result, indentationChar)
}
