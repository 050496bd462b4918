package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/handler"
	"github.com/boba-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	placeFn func(ctx context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error)
	readyFn func(ctx context.Context, orderID int32) (*service.MarkReadyResult, error)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error) {
	return m.placeFn(ctx, req)
}

func (m *mockOrderService) MarkReady(ctx context.Context, orderID int32) (*service.MarkReadyResult, error) {
	return m.readyFn(ctx, orderID)
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	getOrderFn   func(ctx context.Context, id int32) (database.Order, error)
	listOrdersFn func(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	listItemsFn  func(ctx context.Context, orderID int32) ([]database.ListOrderItemsByOrderRow, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id int32) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, arg)
	}
	return []database.Order{}, nil
}

func (m *mockOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID int32) ([]database.ListOrderItemsByOrderRow, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, orderID)
	}
	return []database.ListOrderItemsByOrderRow{}, nil
}

// --- Helpers ---

func setupOrderRouter(svc *mockOrderService, store *mockOrderStore) *chi.Mux {
	if store == nil {
		store = &mockOrderStore{}
	}
	h := handler.NewOrderHandler(svc, store)
	r := chi.NewRouter()
	h.RegisterKioskRoutes(r)
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func testNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		panic(err)
	}
	return n
}

func testOrder(id int32, total string) database.Order {
	return database.Order{
		ID:          id,
		CreatedAt:   time.Date(2026, 10, 15, 14, 5, 0, 0, time.UTC),
		TotalAmount: testNumeric(total),
		Status:      enum.OrderStatusPlaced,
	}
}

func okPlaceFn(captured *service.PlaceOrderRequest) func(context.Context, service.PlaceOrderRequest) (*service.PlaceOrderResult, error) {
	return func(_ context.Context, req service.PlaceOrderRequest) (*service.PlaceOrderResult, error) {
		if captured != nil {
			*captured = req
		}
		return &service.PlaceOrderResult{Order: testOrder(42, req.TotalAmount.String())}, nil
	}
}

func milkTeaBody(size string) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{
				"itemId":         1,
				"finalPrice":     "6.00",
				"customizations": map[string]interface{}{"size": size, "sugar": "50%"},
			},
		},
		"totalAmount":   "6.00",
		"customerEmail": "kim@example.com",
	}
}

// --- Create tests ---

func TestOrderCreateKiosk_HappyPath(t *testing.T) {
	var got service.PlaceOrderRequest
	r := setupOrderRouter(&mockOrderService{placeFn: okPlaceFn(&got)}, nil)

	rr := postJSON(t, r, "/orders", milkTeaBody("Large"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["orderId"] != float64(42) {
		t.Errorf("orderId: got %v, want 42", resp["orderId"])
	}
	if resp["status"] != enum.OrderStatusPlaced {
		t.Errorf("status: got %v, want %s", resp["status"], enum.OrderStatusPlaced)
	}
	if resp["totalAmount"] != "6.00" {
		t.Errorf("totalAmount: got %v, want 6.00", resp["totalAmount"])
	}

	if !got.ScaleBySize {
		t.Error("kiosk orders should scale ingredient usage by size")
	}
	if len(got.Items) != 1 {
		t.Fatalf("items passed to service: got %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.ItemID != 1 || item.SizeName != "Large" {
		t.Errorf("item: got id=%d size=%q, want id=1 size=Large", item.ItemID, item.SizeName)
	}
	if !item.FinalPrice.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("final price: got %s, want 6.00", item.FinalPrice)
	}
	if !strings.Contains(string(item.Customizations), `"sugar"`) {
		t.Errorf("customizations should be passed through verbatim, got %s", item.Customizations)
	}
	if got.CustomerEmail != "kim@example.com" {
		t.Errorf("customer email: got %q", got.CustomerEmail)
	}
}

func TestOrderCreateCashier_DoesNotScale(t *testing.T) {
	var got service.PlaceOrderRequest
	r := setupOrderRouter(&mockOrderService{placeFn: okPlaceFn(&got)}, nil)

	rr := postJSON(t, r, "/cashier/orders", milkTeaBody("Regular"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.ScaleBySize {
		t.Error("cashier orders should deduct base quantities")
	}
}

func TestOrderCreate_NullCustomizations(t *testing.T) {
	var got service.PlaceOrderRequest
	r := setupOrderRouter(&mockOrderService{placeFn: okPlaceFn(&got)}, nil)

	rr := doRequest(t, r, "POST", "/orders",
		`{"items":[{"itemId":1,"finalPrice":"5.00","customizations":null}],"totalAmount":"5.00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.Items[0].Customizations != nil {
		t.Errorf("null customizations should reach the service as nil, got %s", got.Items[0].Customizations)
	}
	if got.Items[0].SizeName != "" {
		t.Errorf("size: got %q, want empty", got.Items[0].SizeName)
	}
}

func TestOrderCreate_BadRequests(t *testing.T) {
	svc := &mockOrderService{placeFn: func(context.Context, service.PlaceOrderRequest) (*service.PlaceOrderResult, error) {
		t.Fatal("service should not be called")
		return nil, nil
	}}
	r := setupOrderRouter(svc, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{not json`, "invalid request body"},
		{"no items", `{"items":[],"totalAmount":"0"}`, "items are required"},
		{"customizations not object", `{"items":[{"itemId":1,"finalPrice":"5","customizations":"large"}],"totalAmount":"5"}`, "item[0]: customizations must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "POST", "/orders", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
			resp := decodeResponse(t, rr)
			if resp["error"] != tt.want {
				t.Errorf("error: got %v, want %q", resp["error"], tt.want)
			}
		})
	}
}

func TestOrderCreate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "size not found",
			err:        fmt.Errorf("item[0]: %w", service.ErrSizeNotFound),
			wantStatus: http.StatusBadRequest,
			wantError:  "item[0]: " + service.ErrSizeNotFound.Error(),
		},
		{
			name:       "sub-cent price",
			err:        fmt.Errorf("item[0]: finalPrice 6.004: %w", service.ErrSubCentAmount),
			wantStatus: http.StatusBadRequest,
			wantError:  "item[0]: finalPrice 6.004: " + service.ErrSubCentAmount.Error(),
		},
		{
			name:       "total mismatch",
			err:        service.ErrTotalMismatch,
			wantStatus: http.StatusBadRequest,
			wantError:  service.ErrTotalMismatch.Error(),
		},
		{
			name: "insufficient stock",
			err: fmt.Errorf("item[0]: %w", &service.InsufficientStockError{
				Ingredient: "Tapioca Pearls",
				Available:  decimal.NewFromInt(1),
				Required:   decimal.NewFromInt(2),
				Shortfall:  decimal.NewFromInt(1),
			}),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "database failure",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{placeFn: func(context.Context, service.PlaceOrderRequest) (*service.PlaceOrderResult, error) {
				return nil, tt.err
			}}
			rr := postJSON(t, setupOrderRouter(svc, nil), "/orders", milkTeaBody("Large"))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if tt.wantError != "" && resp["error"] != tt.wantError {
				t.Errorf("error: got %v, want %q", resp["error"], tt.wantError)
			}
			if tt.wantStatus == http.StatusConflict && !strings.Contains(resp["error"].(string), "Tapioca Pearls") {
				t.Errorf("stock error should name the ingredient, got %v", resp["error"])
			}
		})
	}
}

// --- Read tests ---

func TestOrderList_StatusFilterAndLimit(t *testing.T) {
	var got database.ListOrdersParams
	store := &mockOrderStore{listOrdersFn: func(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
		got = arg
		return []database.Order{testOrder(1, "5.00"), testOrder(2, "6.00")}, nil
	}}
	r := setupOrderRouter(&mockOrderService{}, store)

	rr := doRequest(t, r, "GET", "/orders?status=PLACED&limit=500", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !got.Status.Valid || got.Status.String != enum.OrderStatusPlaced {
		t.Errorf("status filter: got %+v", got.Status)
	}
	if got.Limit != 200 {
		t.Errorf("limit should be capped at 200, got %d", got.Limit)
	}

	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("orders: got %d, want 2", len(resp))
	}
	if resp[1]["total_amount"] != "6.00" {
		t.Errorf("total_amount: got %v, want 6.00", resp[1]["total_amount"])
	}
	if resp[0]["ready_at"] != nil {
		t.Errorf("ready_at: got %v, want null", resp[0]["ready_at"])
	}
}

func TestOrderList_InvalidStatus(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{}, nil)
	rr := doRequest(t, r, "GET", "/orders?status=CANCELLED", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestOrderGet_WithItems(t *testing.T) {
	store := &mockOrderStore{
		getOrderFn: func(_ context.Context, id int32) (database.Order, error) {
			o := testOrder(id, "11.50")
			o.Status = enum.OrderStatusReady
			o.ReadyAt = pgtype.Timestamptz{Time: o.CreatedAt.Add(4 * time.Minute), Valid: true}
			o.CustomerEmail = pgtype.Text{String: "kim@example.com", Valid: true}
			return o, nil
		},
		listItemsFn: func(_ context.Context, orderID int32) ([]database.ListOrderItemsByOrderRow, error) {
			return []database.ListOrderItemsByOrderRow{
				{ID: 1, OrderID: orderID, SizeID: 7, Price: testNumeric("6.00"), Customizations: []byte(`{"size":"Large"}`), MenuItemID: 1, SizeName: "Large", ItemName: "Classic Milk Tea"},
				{ID: 2, OrderID: orderID, SizeID: 9, Price: testNumeric("5.50"), Customizations: []byte(`{}`), MenuItemID: 2, SizeName: "Regular", ItemName: "Taro Milk Tea"},
			}, nil
		},
	}
	r := setupOrderRouter(&mockOrderService{}, store)

	rr := doRequest(t, r, "GET", "/orders/17", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["id"] != float64(17) {
		t.Errorf("id: got %v, want 17", resp["id"])
	}
	if resp["ready_at"] == nil {
		t.Error("ready_at should be set for a READY order")
	}
	if resp["customer_email"] != "kim@example.com" {
		t.Errorf("customer_email: got %v", resp["customer_email"])
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("items: got %v", resp["items"])
	}
	first := items[0].(map[string]interface{})
	if first["item_name"] != "Classic Milk Tea" || first["size_name"] != "Large" || first["price"] != "6.00" {
		t.Errorf("first item: got %v", first)
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{}, nil)
	rr := doRequest(t, r, "GET", "/orders/99", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderGet_InvalidID(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{}, nil)
	for _, path := range []string{"/orders/abc", "/orders/0", "/orders/-3"} {
		rr := doRequest(t, r, "GET", path, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", path, rr.Code, http.StatusBadRequest)
		}
	}
}

// --- Ready tests ---

func TestOrderReady(t *testing.T) {
	tests := []struct {
		name       string
		result     *service.MarkReadyResult
		err        error
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "sent",
			result:     &service.MarkReadyResult{OrderID: 5, NotificationResult: enum.NotificationSent},
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"order_id": float64(5), "notification_result": "sent"},
		},
		{
			name:       "no address",
			result:     &service.MarkReadyResult{OrderID: 5, NotificationResult: enum.NotificationSkippedNoAddress},
			wantStatus: http.StatusOK,
			wantBody:   map[string]interface{}{"notification_result": "skipped_no_address"},
		},
		{
			name:       "not found or already ready",
			err:        service.ErrOrderNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   map[string]interface{}{"error": service.ErrOrderNotFound.Error()},
		},
		{
			name:       "notifier not configured",
			err:        fmt.Errorf("preflight: %w", service.ErrNotifierNotConfigured),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": service.ErrNotifierNotConfigured.Error()},
		},
		{
			name:       "database failure",
			err:        errors.New("deadlock detected"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int32
			svc := &mockOrderService{readyFn: func(_ context.Context, id int32) (*service.MarkReadyResult, error) {
				gotID = id
				return tt.result, tt.err
			}}
			rr := doRequest(t, setupOrderRouter(svc, nil), "POST", "/orders/5/ready", nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if gotID != 5 {
				t.Errorf("order id passed to service: got %d, want 5", gotID)
			}
			resp := decodeResponse(t, rr)
			for k, want := range tt.wantBody {
				if resp[k] != want {
					t.Errorf("%s: got %v, want %v", k, resp[k], want)
				}
			}
		})
	}
}
