package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/events"
	"github.com/boba-pos/api/internal/metrics"
	"github.com/boba-pos/api/internal/notify"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrEmptyItems            = errors.New("items are required")
	ErrInvalidTotal          = errors.New("totalAmount must be > 0")
	ErrInvalidItemID         = errors.New("itemId must be > 0")
	ErrMissingSize           = errors.New("customizations.size is required")
	ErrInvalidPrice          = errors.New("finalPrice must be >= 0")
	ErrSubCentAmount         = errors.New("amount has more than 2 decimal places")
	ErrSizeNotFound          = errors.New("size not found for item")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrPriceBelowCatalog     = errors.New("finalPrice is below the catalog price")
	ErrTotalMismatch         = errors.New("totalAmount does not match the sum of item prices")
	ErrOrderNotFound         = errors.New("order not found or already ready")
	ErrNotifierNotConfigured = errors.New("order notifications are not configured")
)

// InsufficientStockError names the ingredient that would go negative.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Ingredient string
	Available  decimal.Decimal
	Required   decimal.Decimal
	Shortfall  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: need %s, have %s (short %s)",
		e.Ingredient, e.Required.String(), e.Available.String(), e.Shortfall.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to place and advance orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CatalogStore
	ListItemIngredients(ctx context.Context, menuItemID int32) ([]database.ListItemIngredientsRow, error)
	GetIngredientStockForUpdate(ctx context.Context, id int32) (database.GetIngredientStockForUpdateRow, error)
	SetIngredientStock(ctx context.Context, arg database.SetIngredientStockParams) error
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.Orderitem, error)
	MarkOrderReady(ctx context.Context, id int32) (database.MarkOrderReadyRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// Notifier delivers the order-ready message.
// Satisfied by *notify.Mailer.
type Notifier interface {
	CheckCredentials() error
	SendOrderReady(ctx context.Context, to string, orderID int32) error
}

// PlaceOrderRequest is the validated input for placing an order.
type PlaceOrderRequest struct {
	Items         []PlaceOrderItem
	TotalAmount   decimal.Decimal
	CustomerEmail string
	// ScaleBySize multiplies ingredient usage by the size's multiplier.
	// The kiosk sets it; the cashier terminal deducts base quantities.
	ScaleBySize bool
}

// PlaceOrderItem is a single cart entry.
type PlaceOrderItem struct {
	ItemID         int32
	SizeName       string
	FinalPrice     decimal.Decimal
	Customizations json.RawMessage
}

// PlaceOrderResult is the committed order with its items and stock changes.
type PlaceOrderResult struct {
	Order      database.Order
	Items      []database.Orderitem
	Deductions []StockDeduction
}

// StockDeduction records one ingredient decrement.
type StockDeduction struct {
	IngredientID int32
	Ingredient   string
	Used         decimal.Decimal
	Remaining    decimal.Decimal
}

// MarkReadyResult is the outcome of the ready transition.
type MarkReadyResult struct {
	OrderID            int32
	NotificationResult string
}

// OrderConfig carries the optional collaborators of an OrderService.
type OrderConfig struct {
	PricePolicy string
	Notifier    Notifier
	Events      events.Publisher
	Metrics     *metrics.Registry
}

// OrderService handles order business logic.
type OrderService struct {
	pool        TxBeginner
	newStore    NewOrderStore
	pricePolicy string
	notifier    Notifier
	events      events.Publisher
	metrics     *metrics.Registry
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore, cfg OrderConfig) *OrderService {
	if cfg.PricePolicy == "" {
		cfg.PricePolicy = enum.PricePolicyTrust
	}
	if cfg.Events == nil {
		cfg.Events = events.Nop{}
	}
	return &OrderService{
		pool:        pool,
		newStore:    newStore,
		pricePolicy: cfg.PricePolicy,
		notifier:    cfg.Notifier,
		events:      cfg.Events,
		metrics:     cfg.Metrics,
	}
}

// PlaceOrder validates the cart, then inserts the order, its items and the
// ingredient decrements in one transaction. Any failure leaves no trace.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	start := time.Now()

	if err := s.validate(req); err != nil {
		s.metrics.OrderRejected(rejectReason(err))
		return nil, err
	}

	result, err := s.placeOrderTx(ctx, req)
	if err != nil {
		s.metrics.OrderRejected(rejectReason(err))
		return nil, err
	}

	s.metrics.OrderPlaced(time.Since(start))
	s.publish(ctx, enum.EventOrderPlaced, result.Order.ID, map[string]any{
		"order_id":     result.Order.ID,
		"status":       result.Order.Status,
		"total_amount": numericToDecimal(result.Order.TotalAmount).StringFixed(2),
		"item_count":   len(result.Items),
	})
	return result, nil
}

func (s *OrderService) validate(req PlaceOrderRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	if !req.TotalAmount.IsPositive() {
		return ErrInvalidTotal
	}
	if !isWholeCents(req.TotalAmount) {
		return fmt.Errorf("totalAmount %s: %w", req.TotalAmount.String(), ErrSubCentAmount)
	}

	sum := decimal.Zero
	for i, item := range req.Items {
		if item.ItemID <= 0 {
			return fmt.Errorf("item[%d]: %w", i, ErrInvalidItemID)
		}
		if strings.TrimSpace(item.SizeName) == "" {
			return fmt.Errorf("item[%d]: %w", i, ErrMissingSize)
		}
		if item.FinalPrice.IsNegative() {
			return fmt.Errorf("item[%d]: %w", i, ErrInvalidPrice)
		}
		if !isWholeCents(item.FinalPrice) {
			return fmt.Errorf("item[%d]: finalPrice %s: %w", i, item.FinalPrice.String(), ErrSubCentAmount)
		}
		sum = sum.Add(item.FinalPrice)
	}

	if s.pricePolicy == enum.PricePolicyVerify && !sum.Equal(req.TotalAmount) {
		return fmt.Errorf("%w: items sum to %s, total is %s", ErrTotalMismatch, sum.StringFixed(2), req.TotalAmount.StringFixed(2))
	}
	return nil
}

// placeOrderTx executes the full order placement in a single transaction.
func (s *OrderService) placeOrderTx(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	catalog := NewCatalog(store)

	// --- Insert order header ---
	email := pgtype.Text{}
	if e := strings.TrimSpace(req.CustomerEmail); e != "" {
		email = pgtype.Text{String: e, Valid: true}
	}
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TotalAmount:   decimalToNumeric(req.TotalAmount),
		CustomerEmail: email,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	result := &PlaceOrderResult{Order: order}
	needs := make(map[int32]*stockNeed)

	for i, item := range req.Items {
		// --- Resolve size ---
		size, ok, err := catalog.Size(ctx, item.ItemID, strings.TrimSpace(item.SizeName))
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
		if !ok {
			return nil, fmt.Errorf("item[%d]: %w: item %d has no size %q", i, ErrSizeNotFound, item.ItemID, item.SizeName)
		}

		if err := s.checkPrice(i, item, size); err != nil {
			return nil, err
		}

		// --- Insert order item with the captured price ---
		customizations := item.Customizations
		if len(customizations) == 0 {
			customizations = json.RawMessage(`{}`)
		}
		orderItem, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:        order.ID,
			SizeID:         size.ID,
			Price:          decimalToNumeric(item.FinalPrice),
			Customizations: customizations,
		})
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
		result.Items = append(result.Items, orderItem)

		// --- Collect ingredient usage ---
		multiplier := decimal.NewFromInt(1)
		if req.ScaleBySize && size.IngredientMultiplier.Valid {
			multiplier = numericToDecimal(size.IngredientMultiplier)
		}
		if err := collectUsage(ctx, store, i, item.ItemID, multiplier, needs); err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, err)
		}
	}

	// --- Deduct ingredients ---
	deductions, err := deductIngredients(ctx, store, needs)
	if err != nil {
		return nil, err
	}
	result.Deductions = deductions

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// checkPrice compares the caller's price with the catalog. Under the trust
// policy a lower price is only logged.
func (s *OrderService) checkPrice(i int, item PlaceOrderItem, size database.Menuitemsize) error {
	catalogPrice := numericToDecimal(size.Price)
	if !item.FinalPrice.LessThan(catalogPrice) {
		return nil
	}
	if s.pricePolicy == enum.PricePolicyVerify {
		return fmt.Errorf("item[%d]: %w: %s < %s", i, ErrPriceBelowCatalog, item.FinalPrice.StringFixed(2), catalogPrice.StringFixed(2))
	}
	log.Printf("WARN: item %d size %s sold at %s, catalog price %s",
		item.ItemID, size.SizeName, item.FinalPrice.StringFixed(2), catalogPrice.StringFixed(2))
	return nil
}

// stockNeed is one ingredient's usage summed over the cart. uses keeps each
// item's share in cart order so a shortfall can cite the item that crossed it.
type stockNeed struct {
	name  string
	total decimal.Decimal
	uses  []itemUse
}

type itemUse struct {
	index int
	qty   decimal.Decimal
}

// shortage builds the error for a need that exceeds available stock.
func (n *stockNeed) shortage(name string, available decimal.Decimal) error {
	index := n.uses[len(n.uses)-1].index
	used := decimal.Zero
	for _, u := range n.uses {
		used = used.Add(u.qty)
		if used.GreaterThan(available) {
			index = u.index
			break
		}
	}
	return fmt.Errorf("item[%d]: %w", index, &InsufficientStockError{
		Ingredient: name,
		Available:  available,
		Required:   n.total,
		Shortfall:  n.total.Sub(available),
	})
}

// collectUsage adds one cart item's ingredient usage to needs.
func collectUsage(ctx context.Context, store OrderStore, index int, itemID int32, multiplier decimal.Decimal, needs map[int32]*stockNeed) error {
	ingredients, err := store.ListItemIngredients(ctx, itemID)
	if err != nil {
		return fmt.Errorf("list ingredients: %w", err)
	}
	for _, ing := range ingredients {
		qty := numericToDecimal(ing.QuantityUsed).Mul(multiplier).Round(quantityScale)
		need, ok := needs[ing.IngredientID]
		if !ok {
			need = &stockNeed{name: ing.Name, total: decimal.Zero}
			needs[ing.IngredientID] = need
		}
		need.total = need.total.Add(qty)
		need.uses = append(need.uses, itemUse{index: index, qty: qty})
	}
	return nil
}

// deductIngredients decrements every ingredient the cart uses. Rows are
// locked in ascending id order so concurrent carts always acquire them in
// the same sequence.
func deductIngredients(ctx context.Context, store OrderStore, needs map[int32]*stockNeed) ([]StockDeduction, error) {
	ids := make([]int32, 0, len(needs))
	for id := range needs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	deductions := make([]StockDeduction, 0, len(ids))
	for _, id := range ids {
		need := needs[id]

		row, err := store.GetIngredientStockForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock ingredient %s: %w", need.name, err)
		}
		available := numericToDecimal(row.Stock)
		remaining := available.Sub(need.total)
		if remaining.IsNegative() {
			return nil, need.shortage(row.Name, available)
		}

		err = store.SetIngredientStock(ctx, database.SetIngredientStockParams{
			ID:    row.ID,
			Stock: quantityToNumeric(remaining),
		})
		if err != nil {
			if isStockCheckViolation(err) {
				return nil, need.shortage(row.Name, available)
			}
			return nil, fmt.Errorf("update stock for %s: %w", row.Name, err)
		}

		deductions = append(deductions, StockDeduction{
			IngredientID: row.ID,
			Ingredient:   row.Name,
			Used:         need.total,
			Remaining:    remaining,
		})
	}
	return deductions, nil
}

// MarkReady moves a PLACED order to READY, then tries to tell the customer.
// The status change is committed before any mail I/O and is never undone by
// a delivery failure.
func (s *OrderService) MarkReady(ctx context.Context, orderID int32) (*MarkReadyResult, error) {
	// --- Preflight: refuse before touching the order ---
	if s.notifier == nil {
		return nil, ErrNotifierNotConfigured
	}
	if err := s.notifier.CheckCredentials(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotifierNotConfigured, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row, err := s.newStore(tx).MarkOrderReady(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("mark order ready: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	result := &MarkReadyResult{
		OrderID:            row.ID,
		NotificationResult: s.notifyReady(ctx, row),
	}

	s.metrics.OrderReady(result.NotificationResult)
	s.publish(ctx, enum.EventOrderReady, row.ID, map[string]any{
		"order_id":            row.ID,
		"status":              enum.OrderStatusReady,
		"notification_result": result.NotificationResult,
	})
	return result, nil
}

func (s *OrderService) notifyReady(ctx context.Context, row database.MarkOrderReadyRow) string {
	if !row.CustomerEmail.Valid || strings.TrimSpace(row.CustomerEmail.String) == "" {
		return enum.NotificationSkippedNoAddress
	}

	err := s.notifier.SendOrderReady(ctx, row.CustomerEmail.String, row.ID)
	switch {
	case err == nil:
		return enum.NotificationSent
	case errors.Is(err, notify.ErrNoSender):
		log.Printf("WARN: order %d ready but no sender address configured", row.ID)
		return enum.NotificationSkippedConfigMissing
	default:
		log.Printf("ERROR: notify order %d ready: %v", row.ID, err)
		return enum.NotificationFailed
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, orderID int32, payload any) {
	e, err := events.New(eventType, strconv.Itoa(int(orderID)), payload)
	if err == nil {
		err = s.events.Publish(ctx, e)
	}
	if err != nil {
		s.metrics.EventDropped()
		log.Printf("WARN: publish %s for order %d: %v", eventType, orderID, err)
	}
}

// --- Helpers ---

// quantityScale matches the NUMERIC(12,3) stock columns.
const quantityScale = 3

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrSizeNotFound):
		return "size_not_found"
	case errors.Is(err, ErrPriceBelowCatalog), errors.Is(err, ErrTotalMismatch):
		return "price_policy"
	case IsValidationError(err):
		return "validation"
	default:
		return "internal"
	}
}

// IsValidationError reports whether err was caused by bad input rather than
// by the store.
func IsValidationError(err error) bool {
	validationErrors := []error{
		ErrEmptyItems, ErrInvalidTotal, ErrInvalidItemID, ErrMissingSize,
		ErrInvalidPrice, ErrSubCentAmount, ErrSizeNotFound, ErrPriceBelowCatalog, ErrTotalMismatch,
	}
	for _, ve := range validationErrors {
		if errors.Is(err, ve) {
			return true
		}
	}
	return false
}

// isStockCheckViolation matches the ingredients_stock_nonnegative CHECK
// constraint (pgconn error code 23514).
func isStockCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" && pgErr.ConstraintName == "ingredients_stock_nonnegative"
	}
	return false
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

// isWholeCents reports whether d fits NUMERIC(10,2) without rounding.
func isWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func quantityToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(quantityScale))
	return n
}
