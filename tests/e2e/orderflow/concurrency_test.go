//go:build e2e

package orderflow_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"pasarlink/internal/domain/actor"
	"pasarlink/internal/handler/dto/request"
	"pasarlink/internal/handler/dto/response"
	"pasarlink/tests/common/authtest"
	"pasarlink/tests/common/dbtest"
	"pasarlink/tests/common/httptest"
	"pasarlink/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConcurrencySuite struct {
	e2e.SharedSuite
}

func TestConcurrencySuite(t *testing.T) {
	suite.Run(t, new(ConcurrencySuite))
}

func (s *ConcurrencySuite) TestConcurrentCheckoutExhaustsStockExactly() {
	s.Run("exactly as many checkouts succeed as stock allows", func() {
		t := s.T()

		sellerID := uuid.New()
		productID := dbtest.CreateProduct(t, s.DB, sellerID, "es teh", 2000, 5)

		const buyers = 8
		tokens := make([]string, buyers)
		for i := range tokens {
			tokens[i] = authtest.IssueToken(t, s.Config, uuid.New(), actor.RoleBuyer)
			w := httptest.PerformRequest(t, s.Router, http.MethodPost,
				fmt.Sprintf(cartItemsURL, sellerID),
				request.AddToCartRequest{ProductID: productID, Quantity: 1}, tokens[i])
			httptest.RequireStatus(t, w, http.StatusOK)
		}

		codes := make([]int, buyers)
		var wg sync.WaitGroup
		for i, token := range tokens {
			wg.Add(1)
			go func(i int, token string) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL,
					request.PlaceOrderRequest{
						SellerID:        sellerID,
						PaymentMethod:   "cod",
						DeliveryAddress: "Jl. Sudirman 1, Jakarta",
					}, token,
					"Idempotency-Key", uuid.New().String())
				codes[i] = w.Code
			}(i, token)
		}
		wg.Wait()

		var created, rejected int
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusConflict:
				rejected++
			default:
				t.Fatalf("unexpected checkout status %d", code)
			}
		}
		require.Equal(t, 5, created)
		require.Equal(t, 3, rejected)
		require.Equal(t, int32(0), dbtest.ProductStock(t, s.DB, productID))
	})
}

func (s *ConcurrencySuite) TestRacingAcceptsResolveOfferOnce() {
	s.Run("the second accept of a racing pair conflicts", func() {
		t := s.T()

		buyerID, sellerID, courierID := uuid.New(), uuid.New(), uuid.New()
		buyerToken := authtest.IssueToken(t, s.Config, buyerID, actor.RoleBuyer)
		sellerToken := authtest.IssueToken(t, s.Config, sellerID, actor.RoleSeller)
		courierToken := authtest.IssueToken(t, s.Config, courierID, actor.RoleCourier)

		productID := dbtest.CreateProduct(t, s.DB, sellerID, "gado gado", 9000, 3)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, heartbeatURL,
			map[string]any{"available": true, "lat": -6.2, "lng": 106.8}, courierToken)
		httptest.RequireStatus(t, w, http.StatusNoContent)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf(cartItemsURL, sellerID),
			request.AddToCartRequest{ProductID: productID, Quantity: 1}, buyerToken)
		httptest.RequireStatus(t, w, http.StatusOK)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL,
			request.PlaceOrderRequest{
				SellerID:        sellerID,
				PaymentMethod:   "cod",
				DeliveryAddress: "Jl. Sudirman 1, Jakarta",
			}, buyerToken,
			"Idempotency-Key", uuid.New().String())
		httptest.RequireStatus(t, w, http.StatusCreated)

		var placed response.OrderResponse
		httptest.DecodeResponseBody(t, w.Body, &placed)

		for _, status := range []string{"confirmed", "delivery_requested"} {
			w = httptest.PerformRequest(t, s.Router, http.MethodPost,
				fmt.Sprintf(orderStatusURL, placed.ID),
				request.UpdateOrderStatusRequest{Status: status}, sellerToken)
			httptest.RequireStatus(t, w, http.StatusOK)
		}

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, currentOfferURL, nil, courierToken)
		httptest.RequireStatus(t, w, http.StatusOK)

		var offer response.OfferResponse
		httptest.DecodeResponseBody(t, w.Body, &offer)

		codes := make([]int, 2)
		var wg sync.WaitGroup
		for i := range codes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost,
					fmt.Sprintf(respondOfferURL, offer.ID),
					request.OfferResponseRequest{Action: "accept"}, courierToken)
				codes[i] = w.Code
			}(i)
		}
		wg.Wait()

		var accepted, conflicted int
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				accepted++
			case http.StatusConflict:
				conflicted++
			default:
				t.Fatalf("unexpected respond status %d", code)
			}
		}
		require.Equal(t, 1, accepted)
		require.Equal(t, 1, conflicted)

		// The winner's assignment stuck exactly once.
		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("/api/orders/%s", placed.ID), nil, sellerToken)
		httptest.RequireStatus(t, w, http.StatusOK)

		var assigned response.OrderResponse
		httptest.DecodeResponseBody(t, w.Body, &assigned)
		require.Equal(t, "assigned", assigned.Status)
		require.NotNil(t, assigned.CourierID)
		require.Equal(t, courierID, *assigned.CourierID)
	})
}
