//go:build integration

package integration

import (
	"math"
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestCreateOrder_NoAuth(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", "", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidKey(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", "wrong-key", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	resp := doPost(t, "/api/orders", userAPIKey, orderRequest{Items: []orderItemRequest{}})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidProduct(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 999, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", userAPIKey, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 422 {
		t.Errorf("error code: got %d, want 422", errResp.Code)
	}
}

func TestCreateOrder_InvalidQuantity(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 0}},
	}
	resp := doPost(t, "/api/orders", userAPIKey, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

// Seeded promotions: 10% off everything plus a per-unit weight discount
// (2.00 below 5 kg, 3.00 up to 10 kg, 5.00 above). Both stack.

func TestCreateOrder_SingleItem(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 1}}, // 100.00, 0.5 kg
	}
	resp := doPost(t, "/api/orders", userAPIKey, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[placedOrderResponse](t, resp)
	// 10% of 100 = 10.00, weight band [0,5] adds 2.00 per unit.
	if !almostEqual(order.TotalDiscount, 12.00) {
		t.Errorf("totalDiscount: got %v, want 12.00", order.TotalDiscount)
	}
	if !almostEqual(order.GrandTotal, 88.00) {
		t.Errorf("grandTotal: got %v, want 88.00", order.GrandTotal)
	}
	if len(order.AppliedPromotions) != 2 {
		t.Errorf("appliedPromotions: got %d, want 2", len(order.AppliedPromotions))
	}
}

func TestCreateOrder_MultipleItems(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{
			{ProductID: 1, Quantity: 2}, // 2 x 100.00, 1 kg total
			{ProductID: 2, Quantity: 1}, // 1 x 50.00, 2 kg total
		},
	}
	resp := doPost(t, "/api/orders", userAPIKey, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[placedOrderResponse](t, resp)
	if !almostEqual(order.Subtotal, 250.00) {
		t.Errorf("subtotal: got %v, want 250.00", order.Subtotal)
	}
	// 10%: 20.00 + 5.00; weight band [0,5]: 2.00*2 + 2.00*1.
	if !almostEqual(order.TotalDiscount, 31.00) {
		t.Errorf("totalDiscount: got %v, want 31.00", order.TotalDiscount)
	}
	if !almostEqual(order.GrandTotal, 219.00) {
		t.Errorf("grandTotal: got %v, want 219.00", order.GrandTotal)
	}
}

func TestCreateOrder_WeightBands(t *testing.T) {
	cases := []struct {
		name         string
		quantity     int // product 2, 2 kg per unit
		wantDiscount float64
	}{
		{"mid band", 3, 24.00},  // 6 kg: 10% of 150 + 3.00*3
		{"top band", 6, 60.00},  // 12 kg: 10% of 300 + 5.00*6
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := orderRequest{
				Items: []orderItemRequest{{ProductID: 2, Quantity: tc.quantity}},
			}
			resp := doPost(t, "/api/orders", userAPIKey, req)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("expected 201, got %d", resp.StatusCode)
			}

			order := decodeJSON[placedOrderResponse](t, resp)
			if !almostEqual(order.TotalDiscount, tc.wantDiscount) {
				t.Errorf("totalDiscount: got %v, want %v", order.TotalDiscount, tc.wantDiscount)
			}
		})
	}
}

func TestPreviewOrder_MatchesCreate(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 3, Quantity: 1},
		},
	}

	previewResp := doPost(t, "/api/orders/preview", userAPIKey, req)
	defer previewResp.Body.Close()
	if previewResp.StatusCode != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d", previewResp.StatusCode)
	}
	preview := decodeJSON[summaryResponse](t, previewResp)

	createResp := doPost(t, "/api/orders", userAPIKey, req)
	defer createResp.Body.Close()
	if createResp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", createResp.StatusCode)
	}
	created := decodeJSON[placedOrderResponse](t, createResp)

	if !almostEqual(preview.Subtotal, created.Subtotal) {
		t.Errorf("subtotal: preview %v, create %v", preview.Subtotal, created.Subtotal)
	}
	if !almostEqual(preview.TotalDiscount, created.TotalDiscount) {
		t.Errorf("totalDiscount: preview %v, create %v", preview.TotalDiscount, created.TotalDiscount)
	}
	if !almostEqual(preview.GrandTotal, created.GrandTotal) {
		t.Errorf("grandTotal: preview %v, create %v", preview.GrandTotal, created.GrandTotal)
	}
}

func TestPreviewOrder_DoesNotPersist(t *testing.T) {
	beforeResp := doGet(t, "/api/orders", userAPIKey)
	before := decodeJSON[[]orderHeaderResponse](t, beforeResp)
	beforeResp.Body.Close()

	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders/preview", userAPIKey, req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview: expected 200, got %d", resp.StatusCode)
	}

	afterResp := doGet(t, "/api/orders", userAPIKey)
	after := decodeJSON[[]orderHeaderResponse](t, afterResp)
	afterResp.Body.Close()

	if len(after) != len(before) {
		t.Errorf("preview persisted an order: %d -> %d", len(before), len(after))
	}
}

func TestCreateOrder_ResponseStructure(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 1, Quantity: 1}},
	}
	resp := doPost(t, "/api/orders", userAPIKey, req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[placedOrderResponse](t, resp)

	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID %q is not a valid UUID", order.ID)
	}
	if order.CreatedAt.IsZero() {
		t.Error("createdAt is zero")
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(order.Items))
	}

	item := order.Items[0]
	if item.ProductID != 1 {
		t.Errorf("productId: got %d, want 1", item.ProductID)
	}
	if item.Name == "" {
		t.Error("item name is empty")
	}
	if !almostEqual(item.LineTotal, item.UnitPrice*float64(item.Quantity)-item.DiscountAmount) {
		t.Errorf("lineTotal %v inconsistent with unitPrice %v, quantity %d, discount %v",
			item.LineTotal, item.UnitPrice, item.Quantity, item.DiscountAmount)
	}
}

func TestOrderHistory(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 3, Quantity: 2}},
	}
	createResp := doPost(t, "/api/orders", userAPIKey, req)
	created := decodeJSON[placedOrderResponse](t, createResp)
	createResp.Body.Close()

	resp := doGet(t, "/api/orders", userAPIKey)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	orders := decodeJSON[[]orderHeaderResponse](t, resp)
	if len(orders) == 0 {
		t.Fatal("expected at least one order")
	}

	// Newest first: the order just placed leads the list, with the
	// committed totals matching the create response.
	head := orders[0]
	if head.ID != created.ID {
		t.Errorf("head of history: got %q, want %q", head.ID, created.ID)
	}
	if !almostEqual(head.GrandTotal, created.GrandTotal) {
		t.Errorf("persisted grandTotal: got %v, want %v", head.GrandTotal, created.GrandTotal)
	}
	if head.UserID != 1 {
		t.Errorf("userId: got %d, want 1", head.UserID)
	}
}

func TestGetOrder(t *testing.T) {
	req := orderRequest{
		Items: []orderItemRequest{{ProductID: 2, Quantity: 1}},
	}
	createResp := doPost(t, "/api/orders", userAPIKey, req)
	created := decodeJSON[placedOrderResponse](t, createResp)
	createResp.Body.Close()

	t.Run("owner reads detail", func(t *testing.T) {
		resp := doGet(t, "/api/orders/"+created.ID, userAPIKey)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		detail := decodeJSON[orderDetailResponse](t, resp)
		if detail.ID != created.ID {
			t.Errorf("id: got %q, want %q", detail.ID, created.ID)
		}
		if len(detail.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(detail.Items))
		}
		if !almostEqual(detail.Items[0].LineTotal, created.Items[0].LineTotal) {
			t.Errorf("persisted lineTotal: got %v, want %v",
				detail.Items[0].LineTotal, created.Items[0].LineTotal)
		}
	})

	t.Run("other user's order reads as 404", func(t *testing.T) {
		resp := doGet(t, "/api/orders/"+created.ID, adminAPIKey)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("admin: expected 200, got %d", resp.StatusCode)
		}

		unknown := doGet(t, "/api/orders/00000000-0000-0000-0000-000000000000", userAPIKey)
		defer unknown.Body.Close()
		if unknown.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", unknown.StatusCode)
		}
	})
}

func TestAdminOrders(t *testing.T) {
	t.Run("user forbidden", func(t *testing.T) {
		resp := doGet(t, "/api/admin/orders", userAPIKey)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	})

	t.Run("admin sees all orders", func(t *testing.T) {
		resp := doGet(t, "/api/admin/orders", adminAPIKey)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		orders := decodeJSON[[]orderHeaderResponse](t, resp)
		if len(orders) == 0 {
			t.Fatal("expected at least one order")
		}
	})
}
