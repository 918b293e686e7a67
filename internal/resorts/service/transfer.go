package service

import (
	"context"

	"resort/internal/resorts/repository"
	"resort/internal/resorts/validator"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/model"
	"resort/pkg/money"
	"resort/pkg/sanitizer"
	"resort/pkg/validation"
)

type TransferService interface {
	Create(ctx context.Context, transfer *model.Transfer) error
	GetByID(ctx context.Context, id string) (*model.Transfer, error)
	ListByResort(ctx context.Context, resortID string) ([]*model.Transfer, error)
}

type transferService struct {
	repo      repository.TransferRepository
	resorts   ResortService
	validator *validator.ResortValidator
	cfg       *config.Config
}

func NewTransferService(repo repository.TransferRepository, resorts ResortService, validator *validator.ResortValidator, cfg *config.Config) TransferService {
	return &transferService{
		repo:      repo,
		resorts:   resorts,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *transferService) Create(ctx context.Context, transfer *model.Transfer) error {
	transfer.Name = sanitizer.NormalizeName(transfer.Name)
	transfer.UnitPrice = money.Round(transfer.UnitPrice)
	if err := s.validator.ValidateTransfer(transfer); err != nil {
		s.cfg.Log.Warn("Transfer validation failed", "name", transfer.Name, "error", err)
		return validation.ToAppError("Transfer validation failed", err)
	}

	if _, err := s.resorts.GetByID(ctx, transfer.ResortID); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, transfer); err != nil {
		s.cfg.Log.Error("Failed to create transfer", "resort_id", transfer.ResortID, "error", err)
		return apperrors.Internal("Failed to create transfer", err)
	}

	s.cfg.Log.Info("Transfer created successfully", "id", transfer.ID, "resort_id", transfer.ResortID)
	return nil
}

func (s *transferService) GetByID(ctx context.Context, id string) (*model.Transfer, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Transfer ID cannot be empty")
	}
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(s.cfg, err, "Transfer", id, "Failed to retrieve transfer")
	}
	return transfer, nil
}

func (s *transferService) ListByResort(ctx context.Context, resortID string) ([]*model.Transfer, error) {
	if resortID == "" {
		return nil, apperrors.InvalidInput("resort_id query parameter is required")
	}
	transfers, err := s.repo.FindByResort(ctx, resortID)
	if err != nil {
		s.cfg.Log.Error("Failed to list transfers", "resort_id", resortID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve transfers", err)
	}
	return transfers, nil
}
