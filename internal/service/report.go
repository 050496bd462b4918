package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	"github.com/boba-pos/api/internal/events"
	"github.com/boba-pos/api/internal/metrics"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ReportStore defines the DB methods needed for X and Z reports.
// Satisfied by *database.Queries.
type ReportStore interface {
	ZReportExists(ctx context.Context, reportDate pgtype.Date) (bool, error)
	InsertZReportHistory(ctx context.Context, reportDate pgtype.Date) (int64, error)
	DeleteAllZReportHistory(ctx context.Context) (int64, error)
	ListZReportHistory(ctx context.Context) ([]database.Zreporthistory, error)
	GetSalesTotals(ctx context.Context, arg database.GetSalesTotalsParams) (database.GetSalesTotalsRow, error)
	GetSalesByCategory(ctx context.Context, arg database.GetSalesByCategoryParams) ([]database.GetSalesByCategoryRow, error)
	GetIngredientUsage(ctx context.Context, arg database.GetIngredientUsageParams) ([]database.GetIngredientUsageRow, error)
	GetHourlySales(ctx context.Context, arg database.GetHourlySalesParams) ([]database.GetHourlySalesRow, error)
}

// NewReportStore creates a ReportStore from a DBTX (pool or tx).
type NewReportStore func(db database.DBTX) ReportStore

// ZReport is the end-of-day close for one date.
type ZReport struct {
	Status          string
	Date            time.Time
	TotalSales      decimal.Decimal
	TotalItemsSold  int64
	SalesByCategory []CategorySales
	IngredientUsage []IngredientUsage
	// Closed is false for a zero-activity date, which stays re-runnable.
	Closed bool
}

type CategorySales struct {
	Category string
	Sales    decimal.Decimal
}

type IngredientUsage struct {
	Ingredient   string
	Unit         string
	QuantityUsed decimal.Decimal
}

// HourlySales is one X-report row.
type HourlySales struct {
	Hour       int
	SalesTotal decimal.Decimal
}

// ReportConfig carries the optional collaborators of a ReportService.
type ReportConfig struct {
	Location *time.Location
	Events   events.Publisher
	Metrics  *metrics.Registry
}

// ReportService computes X and Z reports. Dates are calendar days in the
// shop's time zone.
type ReportService struct {
	pool     TxBeginner
	store    ReportStore
	newStore NewReportStore
	tz       string
	events   events.Publisher
	metrics  *metrics.Registry
}

// NewReportService creates a ReportService. store serves the read-only
// reports; newStore binds the Z report to its transaction.
func NewReportService(pool TxBeginner, store ReportStore, newStore NewReportStore, cfg ReportConfig) *ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Events == nil {
		cfg.Events = events.Nop{}
	}
	return &ReportService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		tz:       cfg.Location.String(),
		events:   cfg.Events,
		metrics:  cfg.Metrics,
	}
}

// RunZReport closes a business day. A date that already has a history row
// reports ALREADY_RUN without recomputing. A date with no sales and no items
// is computed but not recorded, so it can be run again once activity exists.
func (s *ReportService) RunZReport(ctx context.Context, date time.Time) (*ZReport, error) {
	report, err := s.runZReportTx(ctx, date)
	if err != nil {
		s.metrics.ZReport(enum.ZReportStatusError)
		return nil, err
	}
	s.metrics.ZReport(report.Status)

	if report.Closed {
		day := date.Format(time.DateOnly)
		e, err := events.New(enum.EventZReportClosed, day, map[string]any{
			"date":             day,
			"total_sales":      report.TotalSales.StringFixed(2),
			"total_items_sold": report.TotalItemsSold,
		})
		if err == nil {
			err = s.events.Publish(ctx, e)
		}
		if err != nil {
			s.metrics.EventDropped()
			log.Printf("WARN: publish %s for %s: %v", enum.EventZReportClosed, day, err)
		}
	}
	return report, nil
}

func (s *ReportService) runZReportTx(ctx context.Context, date time.Time) (*ZReport, error) {
	// --- Begin transaction ---
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	reportDate := pgtype.Date{Time: date, Valid: true}

	// --- Idempotency check ---
	exists, err := store.ZReportExists(ctx, reportDate)
	if err != nil {
		return nil, fmt.Errorf("check z report history: %w", err)
	}
	if exists {
		return &ZReport{Status: enum.ZReportStatusAlreadyRun, Date: date}, nil
	}

	// --- Aggregate ---
	totals, err := store.GetSalesTotals(ctx, database.GetSalesTotalsParams{Tz: s.tz, ReportDate: reportDate})
	if err != nil {
		return nil, fmt.Errorf("get sales totals: %w", err)
	}
	categories, err := store.GetSalesByCategory(ctx, database.GetSalesByCategoryParams{Tz: s.tz, ReportDate: reportDate})
	if err != nil {
		return nil, fmt.Errorf("get sales by category: %w", err)
	}
	usage, err := store.GetIngredientUsage(ctx, database.GetIngredientUsageParams{Tz: s.tz, ReportDate: reportDate})
	if err != nil {
		return nil, fmt.Errorf("get ingredient usage: %w", err)
	}

	report := &ZReport{
		Status:          enum.ZReportStatusSuccess,
		Date:            date,
		TotalSales:      numericToDecimal(totals.TotalSales),
		TotalItemsSold:  totals.TotalItems,
		SalesByCategory: make([]CategorySales, 0, len(categories)),
		IngredientUsage: make([]IngredientUsage, 0, len(usage)),
	}
	for _, c := range categories {
		report.SalesByCategory = append(report.SalesByCategory, CategorySales{
			Category: c.Category,
			Sales:    numericToDecimal(c.Sales),
		})
	}
	for _, u := range usage {
		report.IngredientUsage = append(report.IngredientUsage, IngredientUsage{
			Ingredient:   u.IngredientName,
			Unit:         u.Unit,
			QuantityUsed: numericToDecimal(u.QuantityUsed),
		})
	}

	// --- Record the close, unless the day had no activity ---
	if report.TotalSales.IsPositive() || report.TotalItemsSold > 0 {
		n, err := store.InsertZReportHistory(ctx, reportDate)
		if err != nil {
			return nil, fmt.Errorf("insert z report history: %w", err)
		}
		if n == 0 {
			// A concurrent run closed the date between the check and the insert.
			return &ZReport{Status: enum.ZReportStatusAlreadyRun, Date: date}, nil
		}
		report.Closed = true
	}

	// --- Commit ---
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return report, nil
}

// ClearZReportHistory deletes every history row and returns how many were
// removed. Administrative reset only.
func (s *ReportService) ClearZReportHistory(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllZReportHistory(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear z report history: %w", err)
	}
	log.Printf("WARN: z report history cleared (%d rows)", n)
	return n, nil
}

// ListZReportHistory returns closed dates, newest first.
func (s *ReportService) ListZReportHistory(ctx context.Context) ([]database.Zreporthistory, error) {
	rows, err := s.store.ListZReportHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("list z report history: %w", err)
	}
	return rows, nil
}

// HourlySales returns the X report: exactly 24 rows, hour 0 through 23,
// zero-filled. It is recomputed on every call and never locked.
func (s *ReportService) HourlySales(ctx context.Context, date time.Time) ([]HourlySales, error) {
	rows, err := s.store.GetHourlySales(ctx, database.GetHourlySalesParams{
		Tz:         s.tz,
		ReportDate: pgtype.Date{Time: date, Valid: true},
	})
	if err != nil {
		return nil, fmt.Errorf("get hourly sales: %w", err)
	}

	out := make([]HourlySales, 24)
	for h := range out {
		out[h] = HourlySales{Hour: h, SalesTotal: decimal.Zero}
	}
	for _, r := range rows {
		if r.Hour < 0 || r.Hour > 23 {
			continue
		}
		out[r.Hour].SalesTotal = numericToDecimal(r.SalesTotal)
	}
	return out, nil
}
