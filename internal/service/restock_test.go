package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRestockStore struct {
	ingredients []database.Ingredient
	restocked   []database.RestockIngredientParams
	restockErr  error
}

func (f *fakeRestockStore) ListIngredients(ctx context.Context) ([]database.Ingredient, error) {
	return f.ingredients, nil
}

func (f *fakeRestockStore) RestockIngredient(ctx context.Context, arg database.RestockIngredientParams) (database.Ingredient, error) {
	if f.restockErr != nil {
		return database.Ingredient{}, f.restockErr
	}
	f.restocked = append(f.restocked, arg)
	for i, ing := range f.ingredients {
		if ing.ID == arg.ID {
			stock := numericToDecimal(ing.Stock).Add(numericToDecimal(arg.Delta))
			f.ingredients[i].Stock = quantityToNumeric(stock)
			return f.ingredients[i], nil
		}
	}
	return database.Ingredient{}, errors.New("no such ingredient")
}

func shopIngredients() *fakeRestockStore {
	return &fakeRestockStore{ingredients: []database.Ingredient{
		{ID: 100, Name: "Tapioca Pearls", Unit: "cup", Stock: makeNumeric("10")},
		{ID: 101, Name: "Black Tea", Unit: "L", Stock: makeNumeric("5")},
		{ID: 102, Name: "Green Tea", Unit: "L", Stock: makeNumeric("3")},
		{ID: 103, Name: "Whole Milk", Unit: "L", Stock: makeNumeric("8")},
	}}
}

func newTestRestockService(store *fakeRestockStore, pub *recordingPublisher) (*RestockService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	svc := NewRestockService(pool, func(db database.DBTX) RestockStore { return store }, pub, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return svc, tx
}

const deliveryNote = `15 oct
tapioca pearls 20cup
black tea 4.5L
whole milk 6 l`

func TestApplyNote_AppliesEveryLine(t *testing.T) {
	store := shopIngredients()
	pub := &recordingPublisher{}
	svc, tx := newTestRestockService(store, pub)

	res, err := svc.ApplyNote(context.Background(), deliveryNote, false)
	if err != nil {
		t.Fatalf("ApplyNote: %v", err)
	}
	if !res.Applied || !tx.committed {
		t.Fatalf("applied=%v committed=%v, want both true", res.Applied, tx.committed)
	}
	if res.DeliveredOn.Format(time.DateOnly) != "2026-10-15" {
		t.Errorf("delivered on: got %s", res.DeliveredOn)
	}
	if len(store.restocked) != 3 {
		t.Fatalf("restock calls: got %d, want 3", len(store.restocked))
	}
	if !numericEquals(store.restocked[1].Delta, "4.5") {
		t.Errorf("black tea delta: got %v", store.restocked[1].Delta)
	}
	if !res.Lines[0].StockAfter.Equal(dec("30")) {
		t.Errorf("tapioca stock after: got %s, want 30", res.Lines[0].StockAfter)
	}
	for _, l := range res.Lines {
		if l.Warning != "" {
			t.Errorf("line %d: unexpected warning %q", l.Number, l.Warning)
		}
	}
	if len(pub.got) != 1 || pub.got[0].Type != enum.EventInventoryRestocked {
		t.Errorf("events: got %+v", pub.got)
	}
}

func TestApplyNote_DryRunWritesNothing(t *testing.T) {
	store := shopIngredients()
	pub := &recordingPublisher{}
	svc, tx := newTestRestockService(store, pub)

	res, err := svc.ApplyNote(context.Background(), deliveryNote, true)
	if err != nil {
		t.Fatalf("ApplyNote: %v", err)
	}
	if res.Applied || tx.committed || len(store.restocked) != 0 {
		t.Fatalf("dry run wrote: applied=%v committed=%v restocks=%d", res.Applied, tx.committed, len(store.restocked))
	}
	if res.Lines[2].Ingredient != "Whole Milk" || res.Lines[2].Status != "matched" {
		t.Errorf("line 3: got %+v", res.Lines[2])
	}
	if len(pub.got) != 0 {
		t.Errorf("dry run should not publish, got %d events", len(pub.got))
	}
}

func TestApplyNote_UnresolvedLineBlocksWholeNote(t *testing.T) {
	store := shopIngredients()
	svc, tx := newTestRestockService(store, &recordingPublisher{})

	res, err := svc.ApplyNote(context.Background(), "tapioca 5cup\ntea 2L\nstraws 100 pcs", false)
	if err != nil {
		t.Fatalf("ApplyNote: %v", err)
	}
	if res.Applied || tx.committed || len(store.restocked) != 0 {
		t.Fatal("a note with unresolved lines must not be applied")
	}
	if res.Unresolved != 2 {
		t.Errorf("unresolved: got %d, want 2", res.Unresolved)
	}
	if res.Lines[1].Status != "ambiguous" || len(res.Lines[1].Candidates) != 2 {
		t.Errorf("tea line: got %+v", res.Lines[1])
	}
	if res.Lines[2].Status != "unmatched" {
		t.Errorf("straws line: got %+v", res.Lines[2])
	}
}

func TestApplyNote_UnitMismatchWarns(t *testing.T) {
	svc, _ := newTestRestockService(shopIngredients(), &recordingPublisher{})

	res, err := svc.ApplyNote(context.Background(), "tapioca pearls 3 kg", true)
	if err != nil {
		t.Fatalf("ApplyNote: %v", err)
	}
	if res.Lines[0].Warning == "" {
		t.Error("expected a unit mismatch warning for kg vs cup")
	}
}

func TestApplyNote_InvalidNote(t *testing.T) {
	svc, _ := newTestRestockService(shopIngredients(), &recordingPublisher{})
	pool := svc.pool.(*mockTxBeginner)

	_, err := svc.ApplyNote(context.Background(), "15 oct\nsee you soon", false)
	if !errors.Is(err, ErrInvalidNote) {
		t.Fatalf("expected ErrInvalidNote, got %v", err)
	}
	if pool.begins != 0 {
		t.Error("no transaction should start for an unparseable note")
	}
}

func TestApplyNote_StoreFailureRollsBack(t *testing.T) {
	store := shopIngredients()
	store.restockErr = &pgconn.PgError{Code: "23514"}
	svc, tx := newTestRestockService(store, &recordingPublisher{})

	if _, err := svc.ApplyNote(context.Background(), deliveryNote, false); err == nil {
		t.Fatal("expected error")
	}
	if tx.committed {
		t.Error("transaction must not commit after a failed restock")
	}
}

func TestUnitsAgree(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"cups", "cup", true},
		{"l", "L", true},
		{"kg", "cup", false},
		{"pumps", "pump", true},
	}
	for _, tt := range tests {
		if got := unitsAgree(tt.a, tt.b); got != tt.want {
			t.Errorf("unitsAgree(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
