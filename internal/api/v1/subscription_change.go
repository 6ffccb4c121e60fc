package v1

import (
	"net/http"

	"github.com/classward/classward/internal/api/dto"
	ierr "github.com/classward/classward/internal/errors"
	"github.com/classward/classward/internal/logger"
	"github.com/classward/classward/internal/service"
	"github.com/classward/classward/internal/types"
	"github.com/gin-gonic/gin"
)

// SubscriptionChangeHandler handles API requests for subscription plan changes
type SubscriptionChangeHandler struct {
	subscriptionChangeService service.SubscriptionChangeService
	log                       *logger.Logger
}

// NewSubscriptionChangeHandler creates a new subscription change handler
func NewSubscriptionChangeHandler(
	subscriptionChangeService service.SubscriptionChangeService,
	log *logger.Logger,
) *SubscriptionChangeHandler {
	return &SubscriptionChangeHandler{
		subscriptionChangeService: subscriptionChangeService,
		log:                       log,
	}
}

// ModifySubscription moves a student's subscription to a new price:
// upgrades apply immediately with prorated billing, downgrades are
// scheduled for the end of the current period.
func (h *SubscriptionChangeHandler) ModifySubscription(c *gin.Context) {
	var req dto.ModifySubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	log := h.log.With(
		"student_id", req.StudentID,
		"new_price_id", req.NewPriceID,
		"request_id", types.GetRequestID(c.Request.Context()),
	)

	log.Infow("processing subscription modification request")

	resp, err := h.subscriptionChangeService.ModifySubscription(c.Request.Context(), &req)
	if err != nil {
		log.Errorw("failed to modify subscription", "error", err)
		c.Error(err)
		return
	}

	log.Infow("subscription modification completed",
		"change_type", string(resp.Type),
	)

	c.JSON(http.StatusOK, resp)
}
