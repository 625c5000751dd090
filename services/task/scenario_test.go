package task

import (
	"context"
	"errors"
	"sync"
	"testing"

	ledgerRepo "campusrun/database/repository/ledger"
	"campusrun/models"
	"campusrun/services/wallet"

	"github.com/shopspring/decimal"
)

// scenarioLedger backs the real wallet service with in-memory stores,
// applying the same conditional semantics as the Mongo settlement
// transaction.
type scenarioLedger struct {
	mu      sync.Mutex
	entries []models.Transaction
	users   *memUserRepo
	tasks   *memTaskRepo
}

func (l *scenarioLedger) Append(tx *models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *tx)
	return nil
}

func (l *scenarioLedger) ListByUser(userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Transaction
	for _, e := range l.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (l *scenarioLedger) FindByExternalRef(userID, externalRef string) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].UserID == userID && l.entries[i].ExternalRef == externalRef {
			cp := l.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (l *scenarioLedger) RecordExternal(ctx context.Context, tx *models.Transaction, delta decimal.Decimal, requireSufficient bool) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx.ExternalRef != "" {
		for i := range l.entries {
			if l.entries[i].UserID == tx.UserID && l.entries[i].ExternalRef == tx.ExternalRef {
				return nil, ledgerRepo.ErrDuplicateRef
			}
		}
	}

	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	u, ok := l.users.users[tx.UserID]
	if !ok {
		return nil, ledgerRepo.ErrInsufficientFunds
	}
	if requireSufficient && delta.IsNegative() && u.WalletBalance.Add(delta).IsNegative() {
		return nil, ledgerRepo.ErrInsufficientFunds
	}
	l.entries = append(l.entries, *tx)
	u.WalletBalance = u.WalletBalance.Add(delta)
	cp := *u
	return &cp, nil
}

func (l *scenarioLedger) SettleTask(ctx context.Context, task *models.Task, vendorTx, studentTx *models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users.mu.Lock()
	defer l.users.mu.Unlock()
	l.tasks.mu.Lock()
	defer l.tasks.mu.Unlock()

	creator, ok := l.users.users[task.CreatedBy]
	if !ok || creator.WalletBalance.LessThan(task.RewardAmount) {
		return ledgerRepo.ErrInsufficientFunds
	}
	stored, ok := l.tasks.tasks[task.ID]
	if !ok || stored.Status != models.TaskPendingReview {
		return ledgerRepo.ErrTaskStateChanged
	}

	creator.WalletBalance = creator.WalletBalance.Sub(task.RewardAmount)
	assignee := l.users.users[task.AssignedTo]
	assignee.WalletBalance = assignee.WalletBalance.Add(task.RewardAmount)
	l.entries = append(l.entries, *vendorTx, *studentTx)
	stored.Status = models.TaskCompleted
	stored.ReviewNotes = task.ReviewNotes
	return nil
}

func (l *scenarioLedger) taskPayments(userID, taskID string) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Transaction
	for _, e := range l.entries {
		if e.UserID == userID && e.TaskID == taskID && e.Type == models.TxTaskPayment {
			out = append(out, e)
		}
	}
	return out
}

// Full lifecycle against the real wallet service: create, assign, submit
// proof, approve, and verify that the reward moved with a ledger entry per
// side.
func TestLifecycleEndToEnd(t *testing.T) {
	v := testVendor("v1", dec("1000"))
	s := testStudent("s1")
	users := newMemUserRepo(v, s)
	tasks := newMemTaskRepo()
	ledger := &scenarioLedger{users: users, tasks: tasks}
	walletSvc := &wallet.DefaultWalletService{UserRepo: users, Ledger: ledger}
	svc := &DefaultTaskService{Repo: tasks, UserRepo: users, Wallet: walletSvc}

	in := validInput()
	in.RewardAmount = dec("500")
	created, err := svc.Create(v, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Assign(s, created.ID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := svc.SubmitProof(s, created.ID, proofFiles()); err != nil {
		t.Fatalf("submit proof failed: %v", err)
	}

	result, err := svc.Review(v, created.ID, true, "delivered on time")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !result.PaymentProcessed || result.Task.Status != models.TaskCompleted {
		t.Fatalf("result = %+v", result)
	}

	vu, _ := users.GetByIDWithProjection("v1", nil)
	su, _ := users.GetByIDWithProjection("s1", nil)
	if !vu.WalletBalance.Equal(dec("500")) {
		t.Errorf("vendor balance = %s, want 500", vu.WalletBalance)
	}
	if !su.WalletBalance.Equal(dec("500")) {
		t.Errorf("student balance = %s, want 500", su.WalletBalance)
	}
	for _, id := range []string{"v1", "s1"} {
		if got := ledger.taskPayments(id, created.ID); len(got) != 1 || !got[0].Amount.Equal(dec("500")) {
			t.Errorf("task-payment entries for %s = %+v, want one of amount 500", id, got)
		}
	}
}

// The creation-time balance check is not a hold: funds withdrawn before the
// review make the approval fail, and the task stays reviewable.
func TestApproveAfterFundsMoved(t *testing.T) {
	v := testVendor("v1", dec("600"))
	s := testStudent("s1")
	users := newMemUserRepo(v, s)
	tasks := newMemTaskRepo()
	ledger := &scenarioLedger{users: users, tasks: tasks}
	walletSvc := &wallet.DefaultWalletService{UserRepo: users, Ledger: ledger}
	svc := &DefaultTaskService{Repo: tasks, UserRepo: users, Wallet: walletSvc}

	in := validInput()
	in.RewardAmount = dec("500")
	created, err := svc.Create(v, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Assign(s, created.ID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := svc.SubmitProof(s, created.ID, proofFiles()); err != nil {
		t.Fatalf("submit proof failed: %v", err)
	}

	if _, _, err := walletSvc.Withdraw("v1", dec("200"), "bank", ""); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	if _, err := svc.Review(v, created.ID, true, ""); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("approve after withdrawal: got %v, want ErrInsufficientBalance", err)
	}
	if tasks.status(created.ID) != models.TaskPendingReview {
		t.Errorf("status = %s, want pending-review", tasks.status(created.ID))
	}

	vu, _ := users.GetByIDWithProjection("v1", nil)
	su, _ := users.GetByIDWithProjection("s1", nil)
	if !vu.WalletBalance.Equal(dec("400")) || !su.WalletBalance.IsZero() {
		t.Errorf("balances changed on failed approval: %s / %s", vu.WalletBalance, su.WalletBalance)
	}

	// A deposit makes the retry succeed.
	if _, _, err := walletSvc.Deposit("v1", dec("100"), "card", ""); err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if _, err := svc.Review(v, created.ID, true, ""); err != nil {
		t.Fatalf("retried approve failed: %v", err)
	}
	if tasks.status(created.ID) != models.TaskCompleted {
		t.Errorf("status = %s, want completed", tasks.status(created.ID))
	}
}
