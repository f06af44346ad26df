package api

import (
	"errors"
	"net/http"

	reqdto "pasarlink/internal/handler/dto/request"
	resdto "pasarlink/internal/handler/dto/response"
	"pasarlink/internal/handler/middleware"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	carts       commands.CartCommands
	cartQueries queries.CartQueries
}

func NewCartHandler(carts commands.CartCommands, cartQueries queries.CartQueries) *CartHandler {
	return &CartHandler{carts: carts, cartQueries: cartQueries}
}

// @Summary Add product to cart
// @Description Add a product to the buyer's cart with this seller, merging quantities
// @Tags carts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param seller_id path string true "Seller ID"
// @Param request body reqdto.AddToCartRequest true "Cart line"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /carts/{seller_id}/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	buyerID, sellerID, ok := buyerAndSellerID(c)
	if !ok {
		return
	}

	var req reqdto.AddToCartRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.carts.AddToCart(c.Request.Context(), buyerID, commands.AddToCartInput{
		SellerID:  sellerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrProductUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product not available from this seller"})
		case errors.Is(err, commands.ErrInvalidCartLine):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid cart line"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Get cart
// @Description Get the buyer's cart with this seller
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param seller_id path string true "Seller ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /carts/{seller_id} [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	buyerID, sellerID, ok := buyerAndSellerID(c)
	if !ok {
		return
	}

	view, err := h.cartQueries.GetByBuyerSeller(c.Request.Context(), buyerID, sellerID)
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Clear cart
// @Description Remove all items from the buyer's cart with this seller
// @Tags carts
// @Produce json
// @Security BearerAuth
// @Param seller_id path string true "Seller ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Router /carts/{seller_id} [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	buyerID, sellerID, ok := buyerAndSellerID(c)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(c.Request.Context(), buyerID, sellerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

func buyerAndSellerID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	buyerID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, uuid.Nil, false
	}

	sellerID, err := uuid.Parse(c.Param("seller_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seller ID format"})
		return uuid.Nil, uuid.Nil, false
	}
	return buyerID, sellerID, true
}
