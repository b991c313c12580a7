package services

import (
	"context"

	"cargomarket_backend/internal/logger"
	"cargomarket_backend/internal/models"
	"cargomarket_backend/internal/repositories"
	"cargomarket_backend/internal/services/dto"
	"cargomarket_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type BalanceService interface {
	// GetBalance создает кошелек при первом обращении
	GetBalance(ctx context.Context, db *gorm.DB, userID string) (*dto.BalanceResponse, error)
	TopUp(ctx context.Context, db *gorm.DB, userID string, req *dto.TopUpRequest) (*dto.TopUpResponse, error)
	ListTransactions(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.TransactionResponse], error)
}

type balanceService struct {
	walletRepo repositories.WalletRepository
}

func NewBalanceService(walletRepo repositories.WalletRepository) BalanceService {
	return &balanceService{walletRepo: walletRepo}
}

func (s *balanceService) GetBalance(ctx context.Context, db *gorm.DB, userID string) (*dto.BalanceResponse, error) {
	wallet, err := s.walletRepo.FindOrCreate(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewBalanceResponse(wallet), nil
}

// TopUp - зачисление и запись транзакции в одной транзакции БД
func (s *balanceService) TopUp(ctx context.Context, db *gorm.DB, userID string, req *dto.TopUpRequest) (*dto.TopUpResponse, error) {
	if err := requirePositive("amount", req.Amount); err != nil {
		return nil, err
	}
	amountMinor, ok := models.ToMinorUnits(req.Amount)
	if !ok {
		return nil, apperrors.FieldError("amount", "At most 2 decimal places allowed")
	}
	if req.PaymentMethod != models.PaymentMethodCard && req.PaymentMethod != models.PaymentMethodBankTransfer {
		return nil, apperrors.FieldError("payment_method", "Must be one of: card, bank_transfer")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	wallet, err := s.walletRepo.FindOrCreate(tx, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	previous := wallet.BalanceMinor

	if err := s.walletRepo.Credit(tx, wallet.ID, amountMinor); err != nil {
		return nil, handleBalanceError(err)
	}

	// Баланс перечитывается: инкремент выполнен на стороне БД
	updated, err := s.walletRepo.FindByUserID(tx, userID)
	if err != nil {
		return nil, handleBalanceError(err)
	}

	record := &models.BalanceTransaction{
		WalletID:      wallet.ID,
		UserID:        userID,
		AmountMinor:       amountMinor,
		Kind:              models.BalanceTxTopUp,
		PaymentMethod:     req.PaymentMethod,
		CardHolder:        req.CardHolder,
		CardLast4:         req.CardLast4,
		Reference:         req.Reference,
		BalanceAfterMinor: updated.BalanceMinor,
	}
	if err := s.walletRepo.CreateTransaction(tx, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Balance topped up", "wallet_id", wallet.ID, "amount_minor", amountMinor, "method", req.PaymentMethod)
	return &dto.TopUpResponse{
		Success:              true,
		PreviousBalance:      models.FromMinorUnits(previous),
		PreviousBalanceMinor: previous,
		Balance:              models.FromMinorUnits(updated.BalanceMinor),
		BalanceMinor:         updated.BalanceMinor,
		Currency:             updated.Currency,
		Transaction:          dto.NewTransactionResponse(record),
	}, nil
}

func (s *balanceService) ListTransactions(ctx context.Context, db *gorm.DB, userID string, page, pageSize int) (*dto.PageResponse[*dto.TransactionResponse], error) {
	p := newPage(page, pageSize)
	txs, total, err := s.walletRepo.ListTransactions(db, userID, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, dto.NewTransactionResponse(&txs[i]))
	}
	return dto.NewPageResponse(items, total, p.Page, p.PageSize), nil
}

func handleBalanceError(err error) error {
	if isNotFound(err, repositories.ErrWalletNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.InternalError(err)
}
