package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/boba-pos/api/internal/database"
	"github.com/boba-pos/api/internal/enum"
	mw "github.com/boba-pos/api/internal/middleware"
	"github.com/boba-pos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// ReportServicer defines the service methods needed by report handlers.
// Satisfied by *service.ReportService; narrow interface for testability.
type ReportServicer interface {
	RunZReport(ctx context.Context, date time.Time) (*service.ZReport, error)
	ClearZReportHistory(ctx context.Context) (int64, error)
	ListZReportHistory(ctx context.Context) ([]database.Zreporthistory, error)
	HourlySales(ctx context.Context, date time.Time) ([]service.HourlySales, error)
}

// ReportsHandler handles X and Z report endpoints.
type ReportsHandler struct {
	svc ReportServicer
	loc *time.Location
}

// NewReportsHandler creates a new ReportsHandler. loc decides what "today"
// means when a date is omitted.
func NewReportsHandler(svc ReportServicer, loc *time.Location) *ReportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{svc: svc, loc: loc}
}

// RegisterRoutes registers report endpoints. Mount behind a manager role check.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/x", h.XReport)
	r.Get("/reports/x/export", h.XReportExport)
	r.Post("/reports/z", h.RunZReport)
	r.Delete("/reports/z", h.ClearZReportHistory)
	r.Get("/reports/z/history", h.ZReportHistory)
}

// --- Request / Response types ---

type hourlySalesResponse struct {
	Hour        int    `json:"hour"`
	SalesTotals string `json:"sales_totals"`
}

type zReportRequest struct {
	Date string `json:"date"`
}

type zReportResponse struct {
	Status          string                    `json:"status"`
	Date            string                    `json:"date"`
	TotalSales      string                    `json:"totalSales,omitempty"`
	TotalItemsSold  *int64                    `json:"totalItemsSold,omitempty"`
	SalesByCategory []categorySalesResponse   `json:"salesByCategory,omitempty"`
	IngredientUsage []ingredientUsageResponse `json:"ingredientUsage,omitempty"`
	Recorded        *bool                     `json:"recorded,omitempty"`
}

type categorySalesResponse struct {
	Category string `json:"category"`
	Sales    string `json:"sales"`
}

type ingredientUsageResponse struct {
	Ingredient   string `json:"ingredient"`
	Unit         string `json:"unit"`
	QuantityUsed string `json:"quantityUsed"`
}

type zReportHistoryResponse struct {
	ReportDate  string    `json:"report_date"`
	GeneratedAt time.Time `json:"generated_at"`
}

// --- Handlers ---

// XReport handles GET /reports/x?date=YYYY-MM-DD.
func (h *ReportsHandler) XReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.svc.HourlySales(r.Context(), date)
	if err != nil {
		log.Printf("ERROR: x report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]hourlySalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = hourlySalesResponse{Hour: row.Hour, SalesTotals: row.SalesTotal.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// XReportExport handles GET /reports/x/export?date=YYYY-MM-DD and returns
// the hourly breakdown as an XLSX workbook.
func (h *ReportsHandler) XReportExport(w http.ResponseWriter, r *http.Request) {
	date, err := h.parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.svc.HourlySales(r.Context(), date)
	if err != nil {
		log.Printf("ERROR: x report export: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	f, err := hourlySalesWorkbook(date, rows)
	if err != nil {
		log.Printf("ERROR: build x report workbook: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("WARN: close workbook: %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="x-report-%s.xlsx"`, date.Format(time.DateOnly)))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.Printf("ERROR: write x report workbook: %v", err)
	}
}

// RunZReport handles POST /reports/z.
func (h *ReportsHandler) RunZReport(w http.ResponseWriter, r *http.Request) {
	var req zReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date is required"})
		return
	}
	date, err := h.parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := h.svc.RunZReport(r.Context(), date)
	if err != nil {
		log.Printf("ERROR: z report for %s: %v", req.Date, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  enum.ZReportStatusError,
			"message": "z report failed; the date was not closed and can be retried",
		})
		return
	}

	if report.Status == enum.ZReportStatusAlreadyRun {
		writeJSON(w, http.StatusOK, zReportResponse{
			Status: report.Status,
			Date:   date.Format(time.DateOnly),
		})
		return
	}

	if report.Closed {
		log.Printf("Z report %s closed by employee %s", date.Format(time.DateOnly), mw.EmployeeID(r.Context()))
	}
	writeJSON(w, http.StatusCreated, toZReportResponse(report))
}

// ClearZReportHistory handles DELETE /reports/z.
func (h *ReportsHandler) ClearZReportHistory(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearZReportHistory(r.Context())
	if err != nil {
		log.Printf("ERROR: clear z report history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	log.Printf("WARN: employee %s cleared %d z report history rows", mw.EmployeeID(r.Context()), n)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ZReportHistory handles GET /reports/z/history.
func (h *ReportsHandler) ZReportHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListZReportHistory(r.Context())
	if err != nil {
		log.Printf("ERROR: list z report history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]zReportHistoryResponse, len(rows))
	for i, row := range rows {
		resp[i] = zReportHistoryResponse{
			ReportDate:  row.ReportDate.Time.Format(time.DateOnly),
			GeneratedAt: row.GeneratedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// parseDate accepts YYYY-MM-DD; empty means today in the shop's time zone.
func (h *ReportsHandler) parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().In(h.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return t, nil
}

func toZReportResponse(z *service.ZReport) zReportResponse {
	items := z.TotalItemsSold
	recorded := z.Closed
	resp := zReportResponse{
		Status:          z.Status,
		Date:            z.Date.Format(time.DateOnly),
		TotalSales:      z.TotalSales.StringFixed(2),
		TotalItemsSold:  &items,
		SalesByCategory: make([]categorySalesResponse, len(z.SalesByCategory)),
		IngredientUsage: make([]ingredientUsageResponse, len(z.IngredientUsage)),
		Recorded:        &recorded,
	}
	for i, c := range z.SalesByCategory {
		resp.SalesByCategory[i] = categorySalesResponse{Category: c.Category, Sales: c.Sales.StringFixed(2)}
	}
	for i, u := range z.IngredientUsage {
		resp.IngredientUsage[i] = ingredientUsageResponse{
			Ingredient:   u.Ingredient,
			Unit:         u.Unit,
			QuantityUsed: u.QuantityUsed.StringFixed(3),
		}
	}
	return resp
}

const xReportSheet = "X Report"

func hourlySalesWorkbook(date time.Time, rows []service.HourlySales) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", xReportSheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []any{"Hour", "Sales (" + date.Format(time.DateOnly) + ")"}
	if err := f.SetSheetRow(xReportSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(xReportSheet, "A1", "B1", bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		total, _ := row.SalesTotal.Float64()
		values := []any{fmt.Sprintf("%02d:00", row.Hour), total}
		if err := f.SetSheetRow(xReportSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
