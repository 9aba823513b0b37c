package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
	"github.com/noah-isme/claims-api/pkg/response"
)

type claimService interface {
	Submit(ctx context.Context, actor *models.Actor, req dto.SubmitClaimRequest) (*models.Claim, error)
	Get(ctx context.Context, actor *models.Actor, id string) (*models.Claim, error)
	List(ctx context.Context, actor *models.Actor, query dto.ClaimQuery) ([]models.Claim, *models.Pagination, error)
	Process(ctx context.Context, actor *models.Actor, id string, req dto.ProcessClaimRequest) (*models.Claim, error)
	Delete(ctx context.Context, actor *models.Actor, id string) error
}

// ClaimHandler exposes the claim lifecycle endpoints.
type ClaimHandler struct {
	service claimService
}

// NewClaimHandler builds a new handler.
func NewClaimHandler(service claimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// Submit godoc
// @Summary Submit a claim
// @Tags Claims
// @Accept json
// @Produce json
// @Param payload body dto.SubmitClaimRequest true "Claim payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /claims [post]
func (h *ClaimHandler) Submit(c *gin.Context) {
	var req dto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, submitBindError(err))
		return
	}
	claim, err := h.service.Submit(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, claim)
}

// List godoc
// @Summary List visible claims
// @Tags Claims
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param claimType query string false "Claim type"
// @Param centerId query string false "Center ID"
// @Param year query int false "Submission year"
// @Param month query int false "Submission month"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /claims [get]
func (h *ClaimHandler) List(c *gin.Context) {
	query, err := parseClaimQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	claims, pagination, err := h.service.List(c.Request.Context(), actorFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claims, pagination)
}

// Get godoc
// @Summary Get a claim
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /claims/{id} [get]
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.service.Get(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// Process godoc
// @Summary Approve or reject a pending claim
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body dto.ProcessClaimRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /claims/{id}/process [post]
func (h *ClaimHandler) Process(c *gin.Context) {
	var req dto.ProcessClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid process payload"))
		return
	}
	req.Status = models.ClaimStatus(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	claim, err := h.service.Process(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim, nil)
}

// Delete godoc
// @Summary Delete a claim (registry override)
// @Tags Claims
// @Param id path string true "Claim ID"
// @Success 204
// @Router /claims/{id} [delete]
func (h *ClaimHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseClaimQuery(c *gin.Context) (dto.ClaimQuery, error) {
	query := dto.ClaimQuery{CenterID: strings.TrimSpace(c.Query("centerId"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := models.ClaimStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case models.ClaimStatusPending, models.ClaimStatusApproved, models.ClaimStatusRejected:
				query.Status = append(query.Status, status)
			case "":
			default:
				return query, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported status"), "status")
			}
		}
	}
	claimType, err := claimTypeQuery(c)
	if err != nil {
		return query, err
	}
	if claimType != nil {
		query.Type = *claimType
	}
	if c.Query("year") != "" || c.Query("month") != "" {
		if query.Year, query.Month, err = period(c, time.Now().UTC()); err != nil {
			return query, err
		}
	}
	if query.Page, err = queryInt(c, "page", 1); err != nil {
		return query, err
	}
	if query.PageSize, err = queryInt(c, "pageSize", 20); err != nil {
		return query, err
	}
	return query, nil
}

var numericFields = map[string]bool{"transportAmount": true, "cubicCapacity": true}

// submitBindError maps a decode failure on a numeric field to INVALID_NUMERIC_FIELD.
func submitBindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && numericFields[typeErr.Field] {
		return appErrors.WithField(appErrors.Clone(appErrors.ErrInvalidNumeric, "value must be a positive number"), typeErr.Field)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid claim payload")
}
