package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	service.CatalogStore
	ListMenuItems(ctx context.Context) ([]database.Menuitem, error)
	ListMenuItemSizes(ctx context.Context) ([]database.Menuitemsize, error)
	UpdateMenuItemSizePrice(ctx context.Context, arg database.UpdateMenuItemSizePriceParams) (database.Menuitemsize, error)
}

// MenuHandler serves the menu board and kiosk catalog.
type MenuHandler struct {
	store   MenuStore
	catalog *service.Catalog
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store, catalog: service.NewCatalog(store)}
}

// RegisterRoutes registers the public catalog endpoints.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.List)
	r.Get("/menu/items/{id}/price", h.Price)
}

// RegisterManagerRoutes registers catalog maintenance endpoints.
func (h *MenuHandler) RegisterManagerRoutes(r chi.Router) {
	r.Put("/menu/sizes/{sid}/price", h.UpdatePrice)
}

// --- Request / Response types ---

type menuItemResponse struct {
	ID          int32              `json:"id"`
	Name        string             `json:"name"`
	Category    string             `json:"category"`
	Description *string            `json:"description"`
	Sizes       []menuSizeResponse `json:"sizes"`
}

type menuSizeResponse struct {
	ID                   int32  `json:"id"`
	SizeName             string `json:"size_name"`
	Price                string `json:"price"`
	IngredientMultiplier string `json:"ingredient_multiplier"`
}

type priceResponse struct {
	ItemID int32  `json:"item_id"`
	SizeID int32  `json:"size_id"`
	Size   string `json:"size"`
	Price  string `json:"price"`
}

type updatePriceRequest struct {
	Price decimal.Decimal `json:"price"`
}

// --- Handlers ---

// List handles GET /menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	sizes, err := h.store.ListMenuItemSizes(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu item sizes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	sizesByItem := make(map[int32][]menuSizeResponse)
	for _, s := range sizes {
		sizesByItem[s.MenuItemID] = append(sizesByItem[s.MenuItemID], toMenuSizeResponse(s))
	}

	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = menuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Description: textPtr(it.Description),
			Sizes:       sizesByItem[it.ID],
		}
		if resp[i].Sizes == nil {
			resp[i].Sizes = []menuSizeResponse{}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Price handles GET /menu/items/{id}/price?size=Large.
func (h *MenuHandler) Price(w http.ResponseWriter, r *http.Request) {
	itemID, ok := parseIntParam(w, r, "id", "invalid item ID")
	if !ok {
		return
	}
	sizeName := strings.TrimSpace(r.URL.Query().Get("size"))
	if sizeName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size is required"})
		return
	}

	sizeID, found, err := h.catalog.SizeID(r.Context(), itemID, sizeName)
	if err != nil {
		log.Printf("ERROR: resolve size: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "size not found for item"})
		return
	}

	price, found, err := h.catalog.Price(r.Context(), itemID, sizeID)
	if err != nil {
		log.Printf("ERROR: resolve price: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "price not found"})
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		ItemID: itemID,
		SizeID: sizeID,
		Size:   sizeName,
		Price:  price.StringFixed(2),
	})
}

// UpdatePrice handles PUT /menu/sizes/{sid}/price. Past orders keep the
// price they were sold at.
func (h *MenuHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	sizeID, ok := parseIntParam(w, r, "sid", "invalid size ID")
	if !ok {
		return
	}

	var req updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
		return
	}

	size, err := h.store.UpdateMenuItemSizePrice(r.Context(), database.UpdateMenuItemSizePriceParams{
		ID:    sizeID,
		Price: decimalToNumeric(req.Price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "size not found"})
			return
		}
		log.Printf("ERROR: update size price: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuSizeResponse(size))
}

// --- Helpers ---

func toMenuSizeResponse(s database.Menuitemsize) menuSizeResponse {
	return menuSizeResponse{
		ID:                   s.ID,
		SizeName:             s.SizeName,
		Price:                numericToString(s.Price),
		IngredientMultiplier: numericToQuantity(s.IngredientMultiplier),
	}
}

// parseIntParam reads a positive int32 URL parameter or writes a 400.
func parseIntParam(w http.ResponseWriter, r *http.Request, name, msg string) (int32, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 32)
	if err != nil || v <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return 0, false
	}
	return int32(v), true
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func numericToQuantity(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(3)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}
