package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/boba-pos/api/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CatalogStore defines the DB methods needed for size and price lookups.
// Satisfied by *database.Queries.
type CatalogStore interface {
	GetMenuItemSizeByName(ctx context.Context, arg database.GetMenuItemSizeByNameParams) (database.Menuitemsize, error)
	GetMenuItemSizePrice(ctx context.Context, arg database.GetMenuItemSizePriceParams) (pgtype.Numeric, error)
}

// Catalog resolves sizes and prices. A missing row is reported through the
// returned bool, never as an error; callers must check it before using the
// value.
type Catalog struct {
	store CatalogStore
}

// NewCatalog creates a Catalog over a pool- or tx-backed store.
func NewCatalog(store CatalogStore) *Catalog {
	return &Catalog{store: store}
}

// Size resolves the size row for a menu item by name, ignoring case.
func (c *Catalog) Size(ctx context.Context, itemID int32, sizeName string) (database.Menuitemsize, bool, error) {
	size, err := c.store.GetMenuItemSizeByName(ctx, database.GetMenuItemSizeByNameParams{
		MenuItemID: itemID,
		SizeName:   sizeName,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Menuitemsize{}, false, nil
		}
		return database.Menuitemsize{}, false, fmt.Errorf("get size %q for item %d: %w", sizeName, itemID, err)
	}
	return size, true, nil
}

// SizeID resolves only the size identifier.
func (c *Catalog) SizeID(ctx context.Context, itemID int32, sizeName string) (int32, bool, error) {
	size, ok, err := c.Size(ctx, itemID, sizeName)
	if err != nil || !ok {
		return 0, ok, err
	}
	return size.ID, true, nil
}

// Price resolves the current catalog price of a size. The size must belong
// to the given item.
func (c *Catalog) Price(ctx context.Context, itemID, sizeID int32) (decimal.Decimal, bool, error) {
	price, err := c.store.GetMenuItemSizePrice(ctx, database.GetMenuItemSizePriceParams{
		MenuItemID: itemID,
		ID:         sizeID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("get price for item %d size %d: %w", itemID, sizeID, err)
	}
	return numericToDecimal(price), true, nil
}
