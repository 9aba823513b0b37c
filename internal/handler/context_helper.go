package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/claims-api/internal/middleware"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

func actorFromContext(c *gin.Context) *models.Actor {
	return middleware.ActorFromContext(c)
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "must be an integer"), key)
	}
	return val, nil
}

// period reads year and month, defaulting to the current UTC month.
func period(c *gin.Context, now time.Time) (int, int, error) {
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(c, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func claimTypeQuery(c *gin.Context) (*models.ClaimType, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query("claimType")))
	if raw == "" {
		return nil, nil
	}
	claimType := models.ClaimType(raw)
	if !claimType.Valid() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported claim type"), "claimType")
	}
	return &claimType, nil
}
