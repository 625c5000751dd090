package wallet

import (
	"context"
	"errors"
	"fmt"

	ledgerRepo "campusrun/database/repository/ledger"
	"campusrun/models"
	"campusrun/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Balance returns the user's current wallet balance.
func (s *DefaultWalletService) Balance(userID string) (decimal.Decimal, error) {
	usr, err := s.UserRepo.GetByIDWithProjection(userID, bson.M{"id": 1, "walletBalance": 1})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch balance: %w", err)
	}
	if usr == nil {
		return decimal.Zero, ErrUserNotFound
	}
	return usr.WalletBalance, nil
}

// Deposit credits externally confirmed funds to the user's wallet. Each
// external confirmation id authorizes exactly one credit; a replay returns
// the original ledger entry unchanged.
func (s *DefaultWalletService) Deposit(userID string, amount decimal.Decimal, method, externalRef string) (*models.Transaction, decimal.Decimal, error) {
	logger := utils.GetLogger()

	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	usr, err := s.UserRepo.GetByIDWithProjection(userID, bson.M{"id": 1})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, decimal.Zero, ErrUserNotFound
	}

	tx := &models.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          models.TxDeposit,
		Amount:        amount,
		Description:   fmt.Sprintf("Deposit via %s", method),
		Status:        models.TxCompleted,
		PaymentMethod: method,
		ExternalRef:   externalRef,
	}

	// Entry insert and credit commit together; a replayed or racing
	// confirmation aborts on the unique ref index before any balance change.
	updated, err := s.Ledger.RecordExternal(context.Background(), tx, amount, false)
	if err != nil {
		if errors.Is(err, ledgerRepo.ErrDuplicateRef) {
			return s.replayExisting(userID, externalRef, "Deposit")
		}
		return nil, decimal.Zero, fmt.Errorf("failed to record deposit: %w", err)
	}

	logger.Info("Deposit completed",
		zap.String("userID", userID), zap.String("amount", amount.String()))
	return tx, updated.WalletBalance, nil
}

// replayExisting resolves a duplicate external confirmation to the entry it
// originally recorded plus the current balance.
func (s *DefaultWalletService) replayExisting(userID, externalRef, op string) (*models.Transaction, decimal.Decimal, error) {
	utils.GetLogger().Info(op+" replayed, returning recorded entry",
		zap.String("userID", userID), zap.String("externalRef", externalRef))

	existing, err := s.Ledger.FindByExternalRef(userID, externalRef)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to check external ref: %w", err)
	}
	if existing == nil {
		return nil, decimal.Zero, fmt.Errorf("external ref %s recorded but not found", externalRef)
	}
	balance, err := s.Balance(userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return existing, balance, nil
}

// Withdraw debits the wallet for an externally confirmed payout. The debit
// carries a sufficiency filter inside the commit, so a concurrent debit can
// never push the balance below zero.
func (s *DefaultWalletService) Withdraw(userID string, amount decimal.Decimal, method, externalRef string) (*models.Transaction, decimal.Decimal, error) {
	logger := utils.GetLogger()

	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	usr, err := s.UserRepo.GetByIDWithProjection(userID, bson.M{"id": 1})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to fetch user: %w", err)
	}
	if usr == nil {
		return nil, decimal.Zero, ErrUserNotFound
	}

	tx := &models.Transaction{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          models.TxWithdrawal,
		Amount:        amount,
		Description:   fmt.Sprintf("Withdrawal via %s", method),
		Status:        models.TxCompleted,
		PaymentMethod: method,
		ExternalRef:   externalRef,
	}

	updated, err := s.Ledger.RecordExternal(context.Background(), tx, amount.Neg(), true)
	if err != nil {
		switch {
		case errors.Is(err, ledgerRepo.ErrDuplicateRef):
			return s.replayExisting(userID, externalRef, "Withdrawal")
		case errors.Is(err, ledgerRepo.ErrInsufficientFunds):
			return nil, decimal.Zero, ErrInsufficientBalance
		}
		return nil, decimal.Zero, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	logger.Info("Withdrawal completed",
		zap.String("userID", userID), zap.String("amount", amount.String()))
	return tx, updated.WalletBalance, nil
}

// Transactions returns one page of the user's ledger history, newest first.
func (s *DefaultWalletService) Transactions(userID string, filter models.TransactionFilter) ([]models.Transaction, models.Pagination, error) {
	txs, total, err := s.Ledger.ListByUser(userID, filter)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	return txs, models.NewPagination(page, limit, total), nil
}
