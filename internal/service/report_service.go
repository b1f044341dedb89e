package service

import (
	"context"
	"time"

	"delipos/internal/dto"
	"delipos/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportService interface {
	// DailySummary aggregates a store's sales for one day (empty date = today).
	DailySummary(ctx context.Context, storeID, date string) (*dto.DailySummaryResponse, error)
}

type reportService struct {
	repo repository.TransactionRepository
}

func NewReportService(repo repository.TransactionRepository) ReportService {
	return &reportService{repo: repo}
}

func (s *reportService) DailySummary(ctx context.Context, storeID, date string) (*dto.DailySummaryResponse, error) {
	transactions, err := s.repo.ListByDay(ctx, storeID, date)
	if err != nil {
		return nil, err
	}

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	summary := &dto.DailySummaryResponse{
		StoreID:  storeID,
		Date:     date,
		Count:    len(transactions),
		ByMethod: map[string]decimal.Decimal{},
	}
	for i := range transactions {
		t := &transactions[i]
		summary.Gross = summary.Gross.Add(t.Total)
		summary.Tax = summary.Tax.Add(t.Tax)
		summary.ProcessingFees = summary.ProcessingFees.Add(t.ProcessingFee)
		summary.ByMethod[t.PaymentMethod] = summary.ByMethod[t.PaymentMethod].Add(t.Total)
	}
	return summary, nil
}
