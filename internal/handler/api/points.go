package api

import (
	"net/http"

	resdto "pasarlink/internal/handler/dto/response"
	"pasarlink/internal/handler/middleware"
	"pasarlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PointsHandler struct {
	pointsQueries queries.PointsQueries
}

func NewPointsHandler(pointsQueries queries.PointsQueries) *PointsHandler {
	return &PointsHandler{pointsQueries: pointsQueries}
}

// @Summary Get points balance
// @Description Get the buyer's loyalty point balance with a seller
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Param seller_id path string true "Seller ID"
// @Success 200 {object} resdto.PointsBalanceResponse
// @Failure 401 {object} map[string]string
// @Router /points/{seller_id} [get]
func (h *PointsHandler) GetBalance(c *gin.Context) {
	buyerID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	sellerID, err := uuid.Parse(c.Param("seller_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seller ID format"})
		return
	}

	view, err := h.pointsQueries.Balance(c.Request.Context(), buyerID, sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resdto.FromPointsBalanceView(view))
}
