package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error)
	MarkReady(ctx context.Context, orderID int32) (*service.MarkReadyResult, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id int32) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int32) ([]database.ListOrderItemsByOrderRow, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore) *OrderHandler {
	return &OrderHandler{svc: svc, store: store}
}

// RegisterKioskRoutes registers the public self-order endpoint.
func (h *OrderHandler) RegisterKioskRoutes(r chi.Router) {
	r.Post("/orders", h.CreateKiosk)
}

// RegisterRoutes registers staff order endpoints. Mount behind Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/cashier/orders", h.CreateCashier)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders/{id}/ready", h.Ready)
}

// --- Request / Response types ---

type createOrderRequest struct {
	Items         []createOrderItemRequest `json:"items"`
	TotalAmount   decimal.Decimal          `json:"totalAmount"`
	CustomerEmail string                   `json:"customerEmail"`
}

type createOrderItemRequest struct {
	ItemID         int32           `json:"itemId"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	Customizations json.RawMessage `json:"customizations"`
}

// customizations carries the size plus any free-form options (sugar, ice,
// toppings) that are stored verbatim on the order item.
type customizations struct {
	Size string `json:"size"`
}

type createOrderResponse struct {
	OrderID     int32  `json:"orderId"`
	Status      string `json:"status"`
	TotalAmount string `json:"totalAmount"`
}

type orderResponse struct {
	ID            int32               `json:"id"`
	CreatedAt     time.Time           `json:"created_at"`
	TotalAmount   string              `json:"total_amount"`
	IsClosed      bool                `json:"is_closed"`
	CustomerEmail *string             `json:"customer_email"`
	Status        string              `json:"status"`
	ReadyAt       *time.Time          `json:"ready_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID             int32           `json:"id"`
	MenuItemID     int32           `json:"menu_item_id"`
	ItemName       string          `json:"item_name"`
	SizeID         int32           `json:"size_id"`
	SizeName       string          `json:"size_name"`
	Price          string          `json:"price"`
	Customizations json.RawMessage `json:"customizations"`
}

type readyResponse struct {
	OrderID            int32  `json:"order_id"`
	NotificationResult string `json:"notification_result"`
}

// --- Handlers ---

// CreateKiosk handles POST /orders. Ingredient usage scales with size.
func (h *OrderHandler) CreateKiosk(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, true)
}

// CreateCashier handles POST /cashier/orders. Ingredients are deducted at
// base quantity regardless of size.
func (h *OrderHandler) CreateCashier(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, false)
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request, scaleBySize bool) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}

	svcItems := make([]service.PlaceOrderItem, len(req.Items))
	for i, item := range req.Items {
		var c customizations
		if string(item.Customizations) == "null" {
			item.Customizations = nil
		}
		if len(item.Customizations) > 0 {
			if err := json.Unmarshal(item.Customizations, &c); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": formatItemError(i, "customizations must be an object"),
				})
				return
			}
		}
		svcItems[i] = service.PlaceOrderItem{
			ItemID:         item.ItemID,
			SizeName:       c.Size,
			FinalPrice:     item.FinalPrice,
			Customizations: item.Customizations,
		}
	}

	result, err := h.svc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		Items:         svcItems,
		TotalAmount:   req.TotalAmount,
		CustomerEmail: req.CustomerEmail,
		ScaleBySize:   scaleBySize,
	})
	if err != nil {
		// Map known service errors to appropriate HTTP status codes.
		switch {
		case errors.Is(err, service.ErrInsufficientStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case service.IsValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: place order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:     result.Order.ID,
		Status:      result.Order.Status,
		TotalAmount: numericToString(result.Order.TotalAmount),
	})
}

// List handles GET /orders?status=PLACED&limit=50.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 200 {
		limit = 200
	}

	params := database.ListOrdersParams{Limit: int32(limit)}
	if s := r.URL.Query().Get("status"); s != "" {
		if s != enum.OrderStatusPlaced && s != enum.OrderStatusReady {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be PLACED or READY"})
			return
		}
		params.Status = pgtype.Text{String: s, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIntParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ID:             it.ID,
			MenuItemID:     it.MenuItemID,
			ItemName:       it.ItemName,
			SizeID:         it.SizeID,
			SizeName:       it.SizeName,
			Price:          numericToString(it.Price),
			Customizations: json.RawMessage(it.Customizations),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Ready handles POST /orders/{id}/ready.
func (h *OrderHandler) Ready(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIntParam(w, r, "id", "invalid order ID")
	if !ok {
		return
	}

	result, err := h.svc.MarkReady(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": service.ErrOrderNotFound.Error()})
		case errors.Is(err, service.ErrNotifierNotConfigured):
			log.Printf("ERROR: mark order %d ready: %v", orderID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": service.ErrNotifierNotConfigured.Error()})
		default:
			log.Printf("ERROR: mark order %d ready: %v", orderID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, readyResponse{
		OrderID:            result.OrderID,
		NotificationResult: result.NotificationResult,
	})
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return fmt.Sprintf("item[%d]: %s", idx, msg)
}

func dbOrderToResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		CreatedAt:     o.CreatedAt,
		TotalAmount:   numericToString(o.TotalAmount),
		IsClosed:      o.IsClosed,
		CustomerEmail: textPtr(o.CustomerEmail),
		Status:        o.Status,
	}
	if o.ReadyAt.Valid {
		t := o.ReadyAt.Time
		resp.ReadyAt = &t
	}
	return resp
}
