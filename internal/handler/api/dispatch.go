package api

import (
	"errors"
	"net/http"

	"pasarlink/internal/domain/dispatch"
	reqdto "pasarlink/internal/handler/dto/request"
	resdto "pasarlink/internal/handler/dto/response"
	"pasarlink/internal/handler/middleware"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DispatchHandler struct {
	dispatch     commands.DispatchCommands
	couriers     commands.CourierCommands
	offerQueries queries.OfferQueries
}

func NewDispatchHandler(
	dispatch commands.DispatchCommands,
	couriers commands.CourierCommands,
	offerQueries queries.OfferQueries,
) *DispatchHandler {
	return &DispatchHandler{
		dispatch:     dispatch,
		couriers:     couriers,
		offerQueries: offerQueries,
	}
}

// @Summary Respond to delivery offer
// @Description Accept or decline a pending delivery offer; first writer wins
// @Tags dispatch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Offer ID"
// @Param request body reqdto.OfferResponseRequest true "accept or decline"
// @Success 200 {object} resdto.OfferResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /offers/{id}/respond [post]
func (h *DispatchHandler) RespondToOffer(c *gin.Context) {
	courierID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	offerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offer ID format"})
		return
	}

	var req reqdto.OfferResponseRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.dispatch.RespondToOffer(c.Request.Context(), courierID, offerID, req.Accepted())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOfferNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
		case errors.Is(err, commands.ErrOfferNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "Offer belongs to another courier"})
		case errors.Is(err, commands.ErrOfferAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "Offer already resolved or expired"})
		case errors.Is(err, commands.ErrTransitionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Order changed concurrently"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromOfferEntity(result.Offer))
}

// @Summary Get current offer
// @Description Get the courier's live pending offer, if any
// @Tags dispatch
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.OfferResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /couriers/me/offer [get]
func (h *DispatchHandler) CurrentOffer(c *gin.Context) {
	courierID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.offerQueries.CurrentForCourier(c.Request.Context(), courierID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No pending offer"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resdto.FromOfferView(view))
}

// @Summary Courier heartbeat
// @Description Report liveness, availability and location
// @Tags dispatch
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.HeartbeatRequest true "Heartbeat"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /couriers/me/heartbeat [post]
func (h *DispatchHandler) Heartbeat(c *gin.Context) {
	courierID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req reqdto.HeartbeatRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	input := commands.HeartbeatInput{Available: req.Available}
	if req.Lat != nil && req.Lng != nil {
		input.Location = &dispatch.Location{Lat: *req.Lat, Lng: *req.Lng}
	}

	if err := h.couriers.Heartbeat(c.Request.Context(), courierID, input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Sweep expired offers
// @Description Expire overdue offers and reissue dispatch; internal endpoint
// @Tags dispatch
// @Produce json
// @Success 200 {object} resdto.SweepResponse
// @Router /internal/dispatch/sweep [post]
func (h *DispatchHandler) Sweep(c *gin.Context) {
	result, err := h.dispatch.SweepExpiredOffers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}
