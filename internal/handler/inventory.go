package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/boba-pos/api/internal/database"
	mw "github.com/boba-pos/api/internal/middleware"
	"github.com/boba-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// InventoryStore defines the database methods needed by inventory handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type InventoryStore interface {
	ListIngredients(ctx context.Context) ([]database.Ingredient, error)
	RestockIngredient(ctx context.Context, arg database.RestockIngredientParams) (database.Ingredient, error)
}

// RestockServicer applies supplier delivery notes.
// Satisfied by *service.RestockService.
type RestockServicer interface {
	ApplyNote(ctx context.Context, text string, dryRun bool) (*service.RestockResult, error)
}

// InventoryHandler handles ingredient stock endpoints.
type InventoryHandler struct {
	store   InventoryStore
	restock RestockServicer
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(store InventoryStore, restock RestockServicer) *InventoryHandler {
	return &InventoryHandler{store: store, restock: restock}
}

// RegisterRoutes registers inventory endpoints.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.List)
	r.Patch("/inventory/{id}", h.Adjust)
	r.Post("/inventory/deliveries", h.Delivery)
}

type ingredientResponse struct {
	ID    int32  `json:"id"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Stock string `json:"stock"`
}

type adjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

type deliveryRequest struct {
	Note   string `json:"note"`
	DryRun bool   `json:"dry_run"`
}

type deliveryResponse struct {
	DeliveredOn *string                `json:"delivered_on"`
	Applied     bool                   `json:"applied"`
	Unresolved  int                    `json:"unresolved"`
	Lines       []deliveryLineResponse `json:"lines"`
	Warnings    []string               `json:"warnings"`
}

type deliveryLineResponse struct {
	Line         int      `json:"line"`
	Text         string   `json:"text"`
	Status       string   `json:"status"`
	IngredientID *int32   `json:"ingredient_id,omitempty"`
	Ingredient   string   `json:"ingredient,omitempty"`
	Quantity     string   `json:"quantity"`
	Stock        *string  `json:"stock,omitempty"`
	Candidates   []string `json:"candidates,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

// List handles GET /inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListIngredients(r.Context())
	if err != nil {
		log.Printf("ERROR: list ingredients: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ingredientResponse, len(rows))
	for i, row := range rows {
		resp[i] = toIngredientResponse(row)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Adjust handles PATCH /inventory/{id}. A positive delta restocks, a
// negative one records waste; stock can never drop below zero.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIntParam(w, r, "id", "invalid ingredient ID")
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Delta.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta must be non-zero"})
		return
	}

	row, err := h.store.RestockIngredient(r.Context(), database.RestockIngredientParams{
		ID:    id,
		Delta: decimalToNumeric(req.Delta),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "ingredient not found"})
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "stock cannot go below zero"})
			return
		}
		log.Printf("ERROR: adjust ingredient stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(row))
}

// Delivery handles POST /inventory/deliveries. The note is applied all or
// nothing; unresolved lines come back as 422 with the per-line breakdown.
func (h *InventoryHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Note == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "note is required"})
		return
	}

	res, err := h.restock.ApplyNote(r.Context(), req.Note, req.DryRun)
	if err != nil {
		if errors.Is(err, service.ErrInvalidNote) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: apply delivery note: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if res.Applied {
		log.Printf("Delivery note with %d lines applied by employee %s", len(res.Lines), mw.EmployeeID(r.Context()))
	}

	status := http.StatusOK
	if !req.DryRun && !res.Applied {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toDeliveryResponse(res))
}

func toDeliveryResponse(res *service.RestockResult) deliveryResponse {
	resp := deliveryResponse{
		Applied:    res.Applied,
		Unresolved: res.Unresolved,
		Lines:      make([]deliveryLineResponse, len(res.Lines)),
		Warnings:   res.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if !res.DeliveredOn.IsZero() {
		d := res.DeliveredOn.Format(time.DateOnly)
		resp.DeliveredOn = &d
	}
	for i, l := range res.Lines {
		line := deliveryLineResponse{
			Line:       l.Number,
			Text:       l.RawText,
			Status:     l.Status,
			Ingredient: l.Ingredient,
			Quantity:   l.Quantity.StringFixed(3),
			Candidates: l.Candidates,
			Warning:    l.Warning,
		}
		if l.IngredientID != 0 {
			id := l.IngredientID
			line.IngredientID = &id
		}
		if res.Applied {
			stock := l.StockAfter.StringFixed(3)
			line.Stock = &stock
		}
		resp.Lines[i] = line
	}
	return resp
}

func toIngredientResponse(i database.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:    i.ID,
		Name:  i.Name,
		Unit:  i.Unit,
		Stock: numericToQuantity(i.Stock),
	}
}
