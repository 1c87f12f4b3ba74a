package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/fan2bmc/internal/configuration"
	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/qdm12/reprint"
)

func registerCurveEndpoints(rest *echo.Echo, c Controller) {
	group := rest.Group("/curve")

	group.GET("/", func(ctx echo.Context) error {
		data := reprint.This(c.Status().Curve)
		return ctx.JSONPretty(http.StatusOK, data, indentationChar)
	})

	group.PUT("/", func(ctx echo.Context) error {
		var points []curves.CurvePoint
		if err := ctx.Bind(&points); err != nil {
			return returnBadRequest(ctx, err)
		}
		if err := validateCurvePoints(points); err != nil {
			return returnBadRequest(ctx, err)
		}
		curve := curves.NewFanCurve(points)
		if err := c.SetCurve(ctx.Request().Context(), curve); err != nil {
			return returnError(ctx, err)
		}
		return ctx.JSONPretty(http.StatusOK, curve.Steps(), indentationChar)
	})
}

func validateCurvePoints(points []curves.CurvePoint) error {
	if len(points) <= 0 {
		return errors.New("at least one curve point is required")
	}
	for i, point := range points {
		if point.Temperature < configuration.MinSensorTemperature || point.Temperature > configuration.MaxSensorTemperature {
			return fmt.Errorf("curve point %d: temperature %.1f is outside of [%.0f..%.0f]", i+1, point.Temperature, configuration.MinSensorTemperature, configuration.MaxSensorTemperature)
		}
	}
	return nil
}
