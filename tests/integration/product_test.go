//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products", userAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
}

func TestListProducts_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products", userAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var beans *productResponse
	for i := range products {
		if products[i].ID == 1 {
			beans = &products[i]
			break
		}
	}

	if beans == nil {
		t.Fatal("product with ID 1 not found")
	}
	if beans.Name != "Arabica Beans 500g" {
		t.Errorf("name: got %q, want %q", beans.Name, "Arabica Beans 500g")
	}
	if beans.Price != 100.00 {
		t.Errorf("price: got %v, want 100.00", beans.Price)
	}
	if beans.UnitWeightGrams != 500 {
		t.Errorf("unitWeightGrams: got %d, want 500", beans.UnitWeightGrams)
	}
	if beans.Description == "" {
		t.Error("description is empty")
	}
}
