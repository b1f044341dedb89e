package service

import (
	"context"

	"delipos/internal/checkout"
	"delipos/internal/dto"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/rs/zerolog/log"
)

type SettingsService interface {
	// Pricing never fails: when the row is missing or the provider errors,
	// the documented defaults apply (tax on at 8%, cash discount off).
	Pricing(ctx context.Context, storeID string) checkout.Settings
	Get(ctx context.Context, storeID string) (*dto.SettingsResponse, error)
	Update(ctx context.Context, storeID string, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) Pricing(ctx context.Context, storeID string) checkout.Settings {
	row, err := s.repo.Get(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Str("store_id", storeID).Msg("settings: falling back to defaults")
		return checkout.DefaultSettings()
	}
	return checkout.Settings{
		TaxEnabled:          row.TaxEnabled,
		TaxRate:             row.TaxRate,
		TaxName:             row.TaxName,
		CashDiscountEnabled: row.CashDiscountEnabled,
		CashDiscountRate:    row.CashDiscountRate,
	}
}

func (s *settingsService) Get(ctx context.Context, storeID string) (*dto.SettingsResponse, error) {
	row, err := s.repo.Get(ctx, storeID)
	if err != nil {
		// Missing row reads as the defaults rather than a 404.
		def := checkout.DefaultSettings()
		return &dto.SettingsResponse{
			StoreID:    storeID,
			TaxEnabled: def.TaxEnabled,
			TaxRate:    def.TaxRate,
			TaxName:    def.TaxName,
		}, nil
	}
	return settingsToResponse(row), nil
}

func (s *settingsService) Update(ctx context.Context, storeID string, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	row, err := s.repo.Get(ctx, storeID)
	if err != nil {
		def := checkout.DefaultSettings()
		row = &model.StoreSettings{
			StoreID:    storeID,
			TaxEnabled: def.TaxEnabled,
			TaxRate:    def.TaxRate,
			TaxName:    def.TaxName,
		}
	}
	if req.TaxEnabled != nil {
		row.TaxEnabled = *req.TaxEnabled
	}
	if req.TaxRate != nil {
		row.TaxRate = *req.TaxRate
	}
	if req.TaxName != nil {
		row.TaxName = *req.TaxName
	}
	if req.CashDiscountEnabled != nil {
		row.CashDiscountEnabled = *req.CashDiscountEnabled
	}
	if req.CashDiscountRate != nil {
		row.CashDiscountRate = *req.CashDiscountRate
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, err
	}
	return settingsToResponse(row), nil
}

func settingsToResponse(row *model.StoreSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		StoreID:             row.StoreID,
		TaxEnabled:          row.TaxEnabled,
		TaxRate:             row.TaxRate,
		TaxName:             row.TaxName,
		CashDiscountEnabled: row.CashDiscountEnabled,
		CashDiscountRate:    row.CashDiscountRate,
	}
}
