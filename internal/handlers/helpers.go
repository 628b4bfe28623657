package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// getUserIDFromContext returns the authenticated user's id, or 0 when the
// request carries no claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func requireUser(c echo.Context) (uint, error) {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return userID, nil
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

func pageParam(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

// bindAndValidate binds the body into req and runs the echo validator on it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}

func success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func paginated(c echo.Context, key string, items interface{}, page, perPage int, total int64) error {
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{key: items},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    perPage,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// ErrorHandler renders every error as {"success": false, "error": {...}}.
// Errors outside the apperror taxonomy are logged and hidden behind a 500.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := echo.Map{"message": "Something went wrong"}

		var he *echo.HTTPError
		if appErr, ok := apperror.As(err); ok {
			status = appErr.Status()
			body = echo.Map{"message": appErr.Message, "errors": appErr.Messages()}
			if len(appErr.Fields) > 0 {
				body["fields"] = appErr.Fields
			}
		} else if errors.As(err, &he) {
			status = he.Code
			body = echo.Map{"message": fmt.Sprint(he.Message)}
			if status >= http.StatusInternalServerError && he.Internal != nil {
				log.Error("Request failed", zap.String("path", c.Path()), zap.Error(he.Internal))
			}
		} else {
			log.Error("Unhandled error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"success": false, "error": body})
		}
		if err != nil {
			log.Error("Failed to write error response", zap.Error(err))
		}
	}
}
