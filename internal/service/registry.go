package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"marocpos/backend/internal/domain"
	"marocpos/backend/internal/store"
)

// ErrUnknownReport is returned for a report id that is not registered.
var ErrUnknownReport = errors.New("unknown report")

// ReportParams carries the filters a report request may supply. Reports
// ignore the fields they do not use.
type ReportParams struct {
	Date       string
	StartDate  string
	EndDate    string
	ProductID  int64
	CustomerID int64
}

type reportFunc func(ctx context.Context, s *Service, p ReportParams) (any, error)

// reportRegistry maps report ids to their builders. Adding a report means
// adding one entry here; the HTTP layer routes by id and never needs to
// know individual reports.
var reportRegistry = map[string]reportFunc{
	"daily-sales": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.DailySales(ctx, p.Date)
	},
	"sales-range": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.SalesRange(ctx, p.StartDate, p.EndDate)
	},
	"product-performance": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.ProductPerformance(ctx, p.ProductID, p.StartDate, p.EndDate)
	},
	"inventory": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.InventoryReport(ctx)
	},
	"profit-margin": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.ProfitMargin(ctx, p.StartDate, p.EndDate)
	},
	"stock-movements": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.StockMovements(ctx, p.StartDate, p.EndDate, p.ProductID)
	},
	"customer-sales": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.CustomerSales(ctx, p.StartDate, p.EndDate, p.CustomerID)
	},
	"payment-summary": func(ctx context.Context, s *Service, p ReportParams) (any, error) {
		return s.PaymentSummary(ctx, p.StartDate, p.EndDate)
	},
}

// ReportIDs lists the registered report ids, sorted.
func ReportIDs() []string {
	ids := make([]string, 0, len(reportRegistry))
	for id := range reportRegistry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Report builds the named report and returns it rendered as JSON. Results
// pass through the report cache; a cache failure falls back to computing
// the report directly.
func (s *Service) Report(ctx context.Context, id string, params ReportParams) (json.RawMessage, error) {
	build, ok := reportRegistry[id]
	if !ok {
		return nil, ErrUnknownReport
	}

	key := reportCacheKey(id, params)
	if cached, hit, err := s.reportCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: report cache get failed id=%s: %v", id, err)
	} else if hit {
		return cached, nil
	}

	result, err := build(ctx, s, params)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	if err := s.reportCache.Set(ctx, key, payload, s.reportTTL); err != nil {
		log.Printf("[service] WARN: report cache set failed id=%s: %v", id, err)
	}
	return payload, nil
}

func reportCacheKey(id string, p ReportParams) string {
	return fmt.Sprintf("report:%s:%s:%s:%s:%d:%d", id, p.Date, p.StartDate, p.EndDate, p.ProductID, p.CustomerID)
}

// Typed report builders. Date filters arrive as "YYYY-MM-DD" strings (or
// full "YYYY-MM-DD HH:MM:SS" timestamps) and are widened to day bounds.

func (s *Service) DailySales(ctx context.Context, date string) (*domain.DailySalesReport, error) {
	day, from, to, err := dayBounds(date, time.Now())
	if err != nil {
		return nil, err
	}
	return s.repo.DailySales(ctx, day, from, to)
}

func (s *Service) SalesRange(ctx context.Context, startDate, endDate string) (*domain.SalesRangeReport, error) {
	if startDate == "" || endDate == "" {
		return nil, store.ErrInvalidInput
	}
	from, err := parseBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, store.ErrInvalidInput
	}
	return s.repo.SalesRange(ctx, from, to)
}

func (s *Service) ProductPerformance(ctx context.Context, productID int64, startDate, endDate string) (*domain.ProductPerformanceReport, error) {
	if productID < 1 {
		return nil, store.ErrInvalidInput
	}
	from, err := optionalBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := optionalBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	return s.repo.ProductPerformance(ctx, productID, from, to)
}

func (s *Service) InventoryReport(ctx context.Context) (*domain.InventoryReport, error) {
	return s.repo.InventoryReport(ctx)
}

func (s *Service) ProfitMargin(ctx context.Context, startDate, endDate string) (*domain.ProfitMarginReport, error) {
	from, err := optionalBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := optionalBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	return s.repo.ProfitMarginReport(ctx, from, to)
}

func (s *Service) StockMovements(ctx context.Context, startDate, endDate string, productID int64) (*domain.StockMovementReport, error) {
	if productID < 0 {
		return nil, store.ErrInvalidInput
	}
	from, err := optionalBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := optionalBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	return s.repo.StockMovementReport(ctx, from, to, productID)
}

func (s *Service) CustomerSales(ctx context.Context, startDate, endDate string, customerID int64) (*domain.CustomerSalesReport, error) {
	if customerID < 0 {
		return nil, store.ErrInvalidInput
	}
	from, err := optionalBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := optionalBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	return s.repo.CustomerSalesReport(ctx, from, to, customerID)
}

func (s *Service) PaymentSummary(ctx context.Context, startDate, endDate string) (*domain.PaymentSummaryReport, error) {
	from, err := optionalBound(startDate, startOfDaySuffix)
	if err != nil {
		return nil, err
	}
	to, err := optionalBound(endDate, endOfDaySuffix)
	if err != nil {
		return nil, err
	}
	methods, err := s.repo.PaymentSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &domain.PaymentSummaryReport{Methods: methods}
	if from != nil {
		report.StartDate = from.Format(dayLayout)
	}
	if to != nil {
		report.EndDate = to.Format(dayLayout)
	}
	return report, nil
}
