package api

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/fan2bmc/internal/fans"
)

type dutyRequest struct {
	Duty *int `json:"duty"`
}

func errMissingField(name string) error {
	return fmt.Errorf("missing field '%s'", name)
}

func registerFanEndpoints(rest *echo.Echo, c Controller) {
	group := rest.Group("/fan")

	group.POST("/:"+urlParamZone+"/", func(ctx echo.Context) error {
		id := ctx.Param(urlParamZone)
		zone, err := fans.ParseFanZone(id)
		if err != nil {
			return returnNotFound(ctx, id)
		}

		var request dutyRequest
		if err := ctx.Bind(&request); err != nil {
			return returnBadRequest(ctx, err)
		}
		if request.Duty == nil {
			return returnBadRequest(ctx, errMissingField("duty"))
		}

		result, err := c.CommitManualDuty(ctx.Request().Context(), zone, *request.Duty)
		if err != nil {
			return returnError(ctx, err)
		}
		return returnActuationResult(ctx, result)
	})

	rest.POST("/reset/", func(ctx echo.Context) error {
		result, err := c.ResetToBmcAuto(ctx.Request().Context())
		if err != nil {
			return returnError(ctx, err)
		}
		return returnActuationResult(ctx, result)
	})
}
