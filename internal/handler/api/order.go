package api

import (
	"errors"
	"net/http"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/domain/order"
	reqdto "pasarlink/internal/handler/dto/request"
	resdto "pasarlink/internal/handler/dto/response"
	"pasarlink/internal/handler/middleware"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	checkout     commands.CheckoutCommands
	orders       commands.OrderCommands
	orderQueries queries.OrderQueries
}

func NewOrderHandler(
	checkout commands.CheckoutCommands,
	orders commands.OrderCommands,
	orderQueries queries.OrderQueries,
) *OrderHandler {
	return &OrderHandler{
		checkout:     checkout,
		orders:       orders,
		orderQueries: orderQueries,
	}
}

// @Summary Place order
// @Description Convert the buyer's cart with a seller into a pending order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.PlaceOrderRequest true "Order request"
// @Success 201 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	buyerID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req reqdto.PlaceOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.checkout.PlaceOrder(c.Request.Context(), buyerID, idempotencyKey, commands.PlaceOrderInput{
		SellerID:        req.SellerID,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCartNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		case errors.Is(err, commands.ErrCartEmpty):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart is empty"})
		case errors.Is(err, commands.ErrProductUnavailable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Product no longer available"})
		case errors.Is(err, commands.ErrInsufficientStock):
			detail := gin.H{"error": "Insufficient stock"}
			var shortage *commands.StockShortage
			if errors.As(err, &shortage) {
				detail["product_id"] = shortage.ProductID.String()
			}
			c.JSON(http.StatusConflict, detail)
		case errors.Is(err, commands.ErrIdempotencyKeyReused):
			c.JSON(http.StatusConflict, gin.H{"error": "Idempotency key reused with different request"})
		case errors.Is(err, commands.ErrIdempotencyInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "Order request is currently being processed"})
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Order validation failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromOrderView(result.Order))
}

// @Summary Get order
// @Description Get order by ID; visible to its buyer, seller and assigned courier
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	actorID, role, id, ok := actorAndOrderID(c)
	if !ok {
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), actorID, role, id)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary List orders
// @Description List the actor's orders, newest first with cursor pagination
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size"
// @Success 200 {object} resdto.OrderPageResponse
// @Failure 401 {object} map[string]string
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	role, _ := middleware.GetActorRole(c)

	var after *queries.Cursor
	if cursor := c.Query("after"); cursor != "" {
		after = &queries.Cursor{After: cursor}
	}
	limit := queries.ValidateLimit(intQuery(c, "limit"))

	var (
		items []*queries.OrderListItem
		next  *queries.Cursor
		err   error
	)
	if role == actor.RoleSeller {
		items, next, err = h.orderQueries.ListBySeller(c.Request.Context(), actorID, after, limit)
	} else {
		items, next, err = h.orderQueries.ListByBuyer(c.Request.Context(), actorID, after, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderPage(items, next))
}

// @Summary Get order status
// @Description Lightweight status lookup served from cache when warm
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderStatusResponse
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/status [get]
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	actorID, role, id, ok := actorAndOrderID(c)
	if !ok {
		return
	}

	status, err := h.orderQueries.GetStatus(c.Request.Context(), actorID, role, id)
	if err != nil {
		respondOrderQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.OrderStatusResponse{ID: id, Status: status})
}

// @Summary Update order status
// @Description Apply one lifecycle transition on behalf of the authenticated actor
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body reqdto.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} resdto.OrderStatusResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /orders/{id}/status [post]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	actorID, role, id, ok := actorAndOrderID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateOrderStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	result, err := h.orders.AdvanceStatus(c.Request.Context(), actorID, role, id, target)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, commands.ErrOrderAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to act on this order"})
		case errors.Is(err, commands.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Transition not allowed from current status"})
		case errors.Is(err, commands.ErrTransitionConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Order status changed concurrently"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, resdto.OrderStatusResponse{ID: id, Status: result.To.String()})
}

func actorAndOrderID(c *gin.Context) (uuid.UUID, actor.Role, uuid.UUID, bool) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, "", uuid.Nil, false
	}
	role, _ := middleware.GetActorRole(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return uuid.Nil, "", uuid.Nil, false
	}
	return actorID, role, id, true
}

func respondOrderQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrOrderAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this order"})
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
