package repositories

import (
	"errors"

	"cargomarket_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWalletNotFound = errors.New("wallet not found")

const DefaultWalletCurrency = "USD"

type WalletRepository interface {
	FindByUserID(db *gorm.DB, userID string) (*models.Wallet, error)
	// FindOrCreate создает кошелек при первом обращении
	FindOrCreate(db *gorm.DB, userID string) (*models.Wallet, error)
	// Credit зачисляет сумму в центах
	Credit(db *gorm.DB, walletID string, amountMinor int64) error
	CreateTransaction(db *gorm.DB, tx *models.BalanceTransaction) error
	ListTransactions(db *gorm.DB, userID string, page models.Page) ([]models.BalanceTransaction, int64, error)
}

type walletRepository struct{}

func NewWalletRepository() WalletRepository {
	return &walletRepository{}
}

func (r *walletRepository) FindByUserID(db *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.First(&wallet, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) FindOrCreate(db *gorm.DB, userID string) (*models.Wallet, error) {
	wallet, err := r.FindByUserID(db, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, err
	}

	// уникальный user_id: параллельное создание не даст дубля
	created := &models.Wallet{UserID: userID, Currency: DefaultWalletCurrency}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(created).Error; err != nil {
		return nil, err
	}
	return r.FindByUserID(db, userID)
}

// Credit - balance_minor = balance_minor + amount одним UPDATE
func (r *walletRepository) Credit(db *gorm.DB, walletID string, amountMinor int64) error {
	result := db.Model(&models.Wallet{}).Where("id = ?", walletID).
		Updates(map[string]interface{}{"balance_minor": gorm.Expr("balance_minor + ?", amountMinor)})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) CreateTransaction(db *gorm.DB, tx *models.BalanceTransaction) error {
	return db.Create(tx).Error
}

func (r *walletRepository) ListTransactions(db *gorm.DB, userID string, page models.Page) ([]models.BalanceTransaction, int64, error) {
	var (
		txs   []models.BalanceTransaction
		total int64
	)

	query := db.Model(&models.BalanceTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit()).
		Find(&txs).Error
	return txs, total, err
}
