package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// --- Mock MenuStore ---

type mockMenuStore struct {
	items   []database.Menuitem
	sizes   []database.Menuitemsize
	listErr error
	updated *database.UpdateMenuItemSizePriceParams
}

func (m *mockMenuStore) GetMenuItemSizeByName(_ context.Context, arg database.GetMenuItemSizeByNameParams) (database.Menuitemsize, error) {
	for _, s := range m.sizes {
		if s.MenuItemID == arg.MenuItemID && strings.EqualFold(s.SizeName, arg.SizeName) {
			return s, nil
		}
	}
	return database.Menuitemsize{}, pgx.ErrNoRows
}

func (m *mockMenuStore) GetMenuItemSizePrice(_ context.Context, arg database.GetMenuItemSizePriceParams) (pgtype.Numeric, error) {
	for _, s := range m.sizes {
		if s.MenuItemID == arg.MenuItemID && s.ID == arg.ID {
			return s.Price, nil
		}
	}
	return pgtype.Numeric{}, pgx.ErrNoRows
}

func (m *mockMenuStore) ListMenuItems(context.Context) ([]database.Menuitem, error) {
	return m.items, m.listErr
}

func (m *mockMenuStore) ListMenuItemSizes(context.Context) ([]database.Menuitemsize, error) {
	return m.sizes, m.listErr
}

func (m *mockMenuStore) UpdateMenuItemSizePrice(_ context.Context, arg database.UpdateMenuItemSizePriceParams) (database.Menuitemsize, error) {
	for _, s := range m.sizes {
		if s.ID == arg.ID {
			m.updated = &arg
			s.Price = arg.Price
			return s, nil
		}
	}
	return database.Menuitemsize{}, pgx.ErrNoRows
}

func newMenuStore() *mockMenuStore {
	return &mockMenuStore{
		items: []database.Menuitem{
			{ID: 1, Name: "Classic Milk Tea", Category: "Milk Tea", IsAvailable: true},
			{ID: 2, Name: "Taro Milk Tea", Category: "Milk Tea", IsAvailable: true,
				Description: pgtype.Text{String: "Purple and proud", Valid: true}},
			{ID: 3, Name: "Seasonal Special", Category: "Specials", IsAvailable: true},
		},
		sizes: []database.Menuitemsize{
			{ID: 6, MenuItemID: 1, SizeName: "Regular", Price: testNumeric("5.00"), IngredientMultiplier: testNumeric("1")},
			{ID: 7, MenuItemID: 1, SizeName: "Large", Price: testNumeric("6.00"), IngredientMultiplier: testNumeric("1.5")},
			{ID: 9, MenuItemID: 2, SizeName: "Regular", Price: testNumeric("5.50"), IngredientMultiplier: testNumeric("1")},
		},
	}
}

func setupMenuRouter(store *mockMenuStore) *chi.Mux {
	h := handler.NewMenuHandler(store)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterManagerRoutes(r)
	return r
}

// --- Tests ---

func TestMenuList_GroupsSizesUnderItems(t *testing.T) {
	r := setupMenuRouter(newMenuStore())

	rr := doRequest(t, r, "GET", "/menu", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []struct {
		ID          int32   `json:"id"`
		Description *string `json:"description"`
		Sizes       []struct {
			SizeName             string `json:"size_name"`
			Price                string `json:"price"`
			IngredientMultiplier string `json:"ingredient_multiplier"`
		} `json:"sizes"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("items: got %d, want 3", len(resp))
	}
	if len(resp[0].Sizes) != 2 || resp[0].Sizes[1].Price != "6.00" || resp[0].Sizes[1].IngredientMultiplier != "1.500" {
		t.Errorf("classic milk tea sizes: got %+v", resp[0].Sizes)
	}
	if resp[1].Description == nil || *resp[1].Description != "Purple and proud" {
		t.Errorf("description: got %v", resp[1].Description)
	}
	if resp[2].Sizes == nil || len(resp[2].Sizes) != 0 {
		t.Errorf("item without sizes should have an empty list, got %v", resp[2].Sizes)
	}
}

func TestMenuList_StoreError(t *testing.T) {
	store := newMenuStore()
	store.listErr = errors.New("pool closed")
	rr := doRequest(t, setupMenuRouter(store), "GET", "/menu", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

func TestMenuPrice(t *testing.T) {
	r := setupMenuRouter(newMenuStore())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantPrice  string
		wantSizeID float64
	}{
		{"exact size", "/menu/items/1/price?size=Large", http.StatusOK, "6.00", 7},
		{"case insensitive", "/menu/items/1/price?size=regular", http.StatusOK, "5.00", 6},
		{"unknown size", "/menu/items/1/price?size=Venti", http.StatusNotFound, "", 0},
		{"size of another item", "/menu/items/2/price?size=Large", http.StatusNotFound, "", 0},
		{"missing size", "/menu/items/1/price", http.StatusBadRequest, "", 0},
		{"bad item id", "/menu/items/x/price?size=Large", http.StatusBadRequest, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "GET", tt.path, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			resp := decodeResponse(t, rr)
			if resp["price"] != tt.wantPrice {
				t.Errorf("price: got %v, want %s", resp["price"], tt.wantPrice)
			}
			if resp["size_id"] != tt.wantSizeID {
				t.Errorf("size_id: got %v, want %v", resp["size_id"], tt.wantSizeID)
			}
		})
	}
}

func TestMenuUpdatePrice(t *testing.T) {
	store := newMenuStore()
	r := setupMenuRouter(store)

	rr := doRequest(t, r, "PUT", "/menu/sizes/7/price", map[string]string{"price": "6.25"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["price"] != "6.25" {
		t.Errorf("price: got %v, want 6.25", resp["price"])
	}
	if store.updated == nil || store.updated.ID != 7 {
		t.Fatalf("store update: got %+v", store.updated)
	}
}

func TestMenuUpdatePrice_Errors(t *testing.T) {
	r := setupMenuRouter(newMenuStore())

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"negative price", "/menu/sizes/7/price", map[string]string{"price": "-1"}, http.StatusBadRequest},
		{"bad body", "/menu/sizes/7/price", "nope", http.StatusBadRequest},
		{"unknown size", "/menu/sizes/404/price", map[string]string{"price": "4.00"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "PUT", tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
