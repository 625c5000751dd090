package ledgerRepo

import (
	"context"

	"campusrun/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository defines persistence operations for the append-only
// transaction ledger, including the multi-document settlement commit.
type LedgerRepository interface {
	// Append inserts one ledger entry.
	Append(tx *models.Transaction) error

	// ListByUser returns one page of a user's ledger entries, newest first,
	// plus the total count.
	ListByUser(userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error)

	// FindByExternalRef returns the existing entry recorded for an external
	// confirmation id, or (nil, nil) if none exists.
	FindByExternalRef(userID, externalRef string) (*models.Transaction, error)

	// RecordExternal commits one deposit or withdrawal as a single atomic
	// unit: the ledger entry is inserted first, then the wallet balance moves
	// by delta. A replayed externalRef hits the unique index and aborts with
	// ErrDuplicateRef before any balance change; a debit the balance does not
	// cover aborts with ErrInsufficientFunds. Returns the updated user.
	RecordExternal(ctx context.Context, tx *models.Transaction, delta decimal.Decimal, requireSufficient bool) (*models.User, error)

	// SettleTask commits the approval settlement as a single atomic unit:
	// debit the vendor, credit the student, append both task-payment entries,
	// and mark the task completed. A vendor balance that no longer covers the
	// reward aborts the whole unit with ErrInsufficientFunds; a task that left
	// pending-review aborts it with ErrTaskStateChanged.
	SettleTask(ctx context.Context, task *models.Task, vendorTx, studentTx *models.Transaction) error
}
