package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicare-api/internal/middleware"
	"github.com/harentsoaR/medicare-api/internal/services"
)

func (h *Handler) ListMedicines(c *gin.Context) {
	medicines, err := h.Pharmacy.Catalog(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, medicines)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.Pharmacy.Orders(c.Request.Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respondList(c, orders)
}

// CreateOrder prices the cart and opens a gateway order the client then pays.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req struct {
		Items []services.CartItem `json:"items"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.Pharmacy.PlaceOrder(c.Request.Context(), middleware.PrincipalFrom(c).UserID, req.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "order created", "data": order})
}

// CreatePaymentOrder passes an amount in major units through to the gateway.
func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := services.CreatePassthroughOrder(c.Request.Context(), h.Payments, req.Amount, h.now())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, order)
}
