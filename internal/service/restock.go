package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/events"
	"github.com/boba-pos/api/internal/metrics"
	"github.com/boba-pos/api/internal/restock"
	"github.com/shopspring/decimal"
)

// ErrInvalidNote is returned when a delivery note has no usable lines.
var ErrInvalidNote = errors.New("invalid delivery note")

// RestockStore defines the DB methods needed to apply a delivery note.
// Satisfied by *database.Queries.
type RestockStore interface {
	ListIngredients(ctx context.Context) ([]database.Ingredient, error)
	RestockIngredient(ctx context.Context, arg database.RestockIngredientParams) (database.Ingredient, error)
}

// NewRestockStore creates a RestockStore from a DBTX (pool or tx).
type NewRestockStore func(db database.DBTX) RestockStore

// RestockLine reports how one note line resolved.
type RestockLine struct {
	Number       int
	RawText      string
	Status       string // matched, ambiguous or unmatched
	IngredientID int32
	Ingredient   string
	Quantity     decimal.Decimal
	StockAfter   decimal.Decimal // set once applied
	Candidates   []string
	Warning      string
}

// RestockResult is the outcome of ApplyNote. Applied is false for a dry run
// and whenever any line is unresolved; in that case nothing was written.
type RestockResult struct {
	DeliveredOn time.Time
	Applied     bool
	Unresolved  int
	Lines       []RestockLine
	Warnings    []string
}

// RestockService applies supplier delivery notes to ingredient stock.
type RestockService struct {
	pool     TxBeginner
	newStore NewRestockStore
	events   events.Publisher
	metrics  *metrics.Registry
	now      func() time.Time
}

// NewRestockService creates a RestockService. pub and reg may be nil.
func NewRestockService(pool TxBeginner, newStore NewRestockStore, pub events.Publisher, reg *metrics.Registry) *RestockService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &RestockService{pool: pool, newStore: newStore, events: pub, metrics: reg, now: time.Now}
}

// ApplyNote parses a delivery note, resolves each line to an ingredient and,
// unless dryRun is set, restocks every line in one transaction. A note with
// any ambiguous or unmatched line is never partially applied.
func (s *RestockService) ApplyNote(ctx context.Context, text string, dryRun bool) (*RestockResult, error) {
	note, err := restock.ParseNote(text, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNote, err)
	}

	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Resolve lines ---
	rows, err := store.ListIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	known := make([]restock.Ingredient, len(rows))
	for i, r := range rows {
		known[i] = restock.Ingredient{ID: r.ID, Name: r.Name, Unit: r.Unit}
	}
	matcher := restock.NewMatcher(known)

	result := &RestockResult{
		DeliveredOn: note.DeliveredOn,
		Lines:       make([]RestockLine, len(note.Lines)),
		Warnings:    note.Warnings,
	}
	for i, line := range note.Lines {
		m := matcher.Match(line.Description)
		out := RestockLine{
			Number:   line.Number,
			RawText:  line.RawText,
			Status:   m.Status.String(),
			Quantity: line.Qty.Round(quantityScale),
		}
		switch m.Status {
		case restock.Matched:
			out.IngredientID = m.Ingredient.ID
			out.Ingredient = m.Ingredient.Name
			if line.Unit != "" && !unitsAgree(line.Unit, m.Ingredient.Unit) {
				out.Warning = fmt.Sprintf("note says %s, %s is stocked in %s", line.Unit, m.Ingredient.Name, m.Ingredient.Unit)
			}
		case restock.Ambiguous:
			for _, c := range m.Candidates {
				out.Candidates = append(out.Candidates, c.Name)
			}
			result.Unresolved++
		default:
			result.Unresolved++
		}
		result.Lines[i] = out
	}

	if dryRun || result.Unresolved > 0 {
		return result, nil
	}

	// --- Apply ---
	for i := range result.Lines {
		line := &result.Lines[i]
		row, err := store.RestockIngredient(ctx, database.RestockIngredientParams{
			ID:    line.IngredientID,
			Delta: quantityToNumeric(line.Quantity),
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: restock %s: %w", line.Number, line.Ingredient, err)
		}
		line.StockAfter = numericToDecimal(row.Stock)
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	result.Applied = true

	s.publishRestock(ctx, result)
	return result, nil
}

func (s *RestockService) publishRestock(ctx context.Context, result *RestockResult) {
	type restocked struct {
		IngredientID int32  `json:"ingredient_id"`
		Ingredient   string `json:"ingredient"`
		Delta        string `json:"delta"`
		Stock        string `json:"stock"`
	}
	payload := make([]restocked, len(result.Lines))
	for i, l := range result.Lines {
		payload[i] = restocked{
			IngredientID: l.IngredientID,
			Ingredient:   l.Ingredient,
			Delta:        l.Quantity.StringFixed(quantityScale),
			Stock:        l.StockAfter.StringFixed(quantityScale),
		}
	}

	key := ""
	if !result.DeliveredOn.IsZero() {
		key = result.DeliveredOn.Format(time.DateOnly)
	}
	e, err := events.New(enum.EventInventoryRestocked, key, map[string]any{"lines": payload})
	if err == nil {
		err = s.events.Publish(ctx, e)
	}
	if err != nil {
		s.metrics.EventDropped()
		log.Printf("WARN: publish %s: %v", enum.EventInventoryRestocked, err)
	}
}

// unitsAgree compares a note unit with a stock unit, ignoring case and a
// plural "s".
func unitsAgree(noteUnit, stockUnit string) bool {
	a := strings.TrimSuffix(strings.ToLower(noteUnit), "s")
	b := strings.TrimSuffix(strings.ToLower(stockUnit), "s")
	return a == b
}
