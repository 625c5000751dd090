package wallet

import (
	"context"

	ledgerRepo "campusrun/database/repository/ledger"
	userRepo "campusrun/database/repository/user"
	"campusrun/models"

	"github.com/shopspring/decimal"
)

// WalletService moves money between wallets and the outside world. Every
// balance-affecting operation leaves exactly one ledger entry per side.
type WalletService interface {
	// Balance returns the user's current wallet balance.
	Balance(userID string) (decimal.Decimal, error)

	// Deposit credits externally confirmed funds. When externalRef identifies
	// an already-recorded confirmation the original entry is returned instead
	// of crediting twice.
	Deposit(userID string, amount decimal.Decimal, method, externalRef string) (*models.Transaction, decimal.Decimal, error)

	// Withdraw debits the wallet for an externally confirmed payout, refusing
	// debits the balance does not cover.
	Withdraw(userID string, amount decimal.Decimal, method, externalRef string) (*models.Transaction, decimal.Decimal, error)

	// Transactions returns one page of the user's ledger history.
	Transactions(userID string, filter models.TransactionFilter) ([]models.Transaction, models.Pagination, error)

	// SettleTask executes the approval settlement for a pending-review task:
	// reward moves from creator to assignee with both ledger entries and the
	// status change applied atomically.
	SettleTask(ctx context.Context, task *models.Task) error
}

// DefaultWalletService is the production implementation.
type DefaultWalletService struct {
	UserRepo userRepo.UserRepository
	Ledger   ledgerRepo.LedgerRepository
}
