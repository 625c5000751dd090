package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	ledgerRepo "campusrun/database/repository/ledger"
	"campusrun/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// memUserRepo is an in-memory UserRepository for tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Update(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error { return nil }

func (r *memUserRepo) GetByIDWithProjection(id string, projection bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmailWithProjection(email string, projection bson.M) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) SetRatingStats(id string, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.AverageRating = average
		u.TotalRatings = count
	}
	return nil
}

func (r *memUserRepo) balance(id string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].WalletBalance
}

// memLedger is an in-memory LedgerRepository. RecordExternal and SettleTask
// apply the same all-or-nothing semantics as the Mongo transactions against
// the shared user and task maps. commitErr, when set, makes RecordExternal
// fail without touching any state, like an aborted session.
type memLedger struct {
	mu        sync.Mutex
	entries   []models.Transaction
	users     *memUserRepo
	tasks     map[string]*models.Task
	commitErr error
}

func newMemLedger(users *memUserRepo) *memLedger {
	return &memLedger{users: users, tasks: make(map[string]*models.Task)}
}

func (l *memLedger) Append(tx *models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *tx)
	return nil
}

func (l *memLedger) ListByUser(userID string, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.Transaction
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.UserID != userID {
			continue
		}
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (l *memLedger) FindByExternalRef(userID, externalRef string) (*models.Transaction, error) {
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

func (l *memLedger) RecordExternal(ctx context.Context, tx *models.Transaction, delta decimal.Decimal, requireSufficient bool) (*models.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.commitErr != nil {
		return nil, l.commitErr
	}
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

func (l *memLedger) SettleTask(ctx context.Context, task *models.Task, vendorTx, studentTx *models.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users.mu.Lock()
	defer l.users.mu.Unlock()

	vendor, ok := l.users.users[task.CreatedBy]
	if !ok || vendor.WalletBalance.LessThan(task.RewardAmount) {
		return ledgerRepo.ErrInsufficientFunds
	}
	stored, ok := l.tasks[task.ID]
	if !ok || stored.Status != models.TaskPendingReview {
		return ledgerRepo.ErrTaskStateChanged
	}

	vendor.WalletBalance = vendor.WalletBalance.Sub(task.RewardAmount)
	l.users.users[task.AssignedTo].WalletBalance =
		l.users.users[task.AssignedTo].WalletBalance.Add(task.RewardAmount)
	l.entries = append(l.entries, *vendorTx, *studentTx)
	stored.Status = models.TaskCompleted
	stored.ReviewNotes = task.ReviewNotes
	return nil
}

func (l *memLedger) countByType(userID string, t models.TransactionType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.UserID == userID && e.Type == t {
			n++
		}
	}
	return n
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newWalletFixture(users ...*models.User) (*DefaultWalletService, *memUserRepo, *memLedger) {
	repo := newMemUserRepo(users...)
	ledger := newMemLedger(repo)
	return &DefaultWalletService{UserRepo: repo, Ledger: ledger}, repo, ledger
}

func student(id string, balance decimal.Decimal) *models.User {
	return &models.User{ID: id, Role: models.RoleStudent, WalletBalance: balance}
}

func vendor(id string, balance decimal.Decimal) *models.User {
	return &models.User{ID: id, Role: models.RoleVendor, WalletBalance: balance}
}

func TestDepositValidation(t *testing.T) {
	svc, _, _ := newWalletFixture(student("u1", decimal.Zero))

	if _, _, err := svc.Deposit("u1", decimal.Zero, "card", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount: got %v, want ErrInvalidAmount", err)
	}
	if _, _, err := svc.Deposit("u1", dec("-5"), "card", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative amount: got %v, want ErrInvalidAmount", err)
	}
	if _, _, err := svc.Deposit("ghost", dec("10"), "card", ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestDepositCreditsWallet(t *testing.T) {
	svc, repo, ledger := newWalletFixture(student("u1", dec("25")))

	tx, balance, err := svc.Deposit("u1", dec("100.50"), "mobile-money", "")
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if !balance.Equal(dec("125.50")) {
		t.Errorf("returned balance = %s, want 125.50", balance)
	}
	if !repo.balance("u1").Equal(dec("125.50")) {
		t.Errorf("stored balance = %s, want 125.50", repo.balance("u1"))
	}
	if tx.Type != models.TxDeposit || tx.Status != models.TxCompleted {
		t.Errorf("entry = %s/%s, want deposit/completed", tx.Type, tx.Status)
	}
	if n := ledger.countByType("u1", models.TxDeposit); n != 1 {
		t.Errorf("ledger deposit entries = %d, want 1", n)
	}
}

func TestDepositReplayIsIdempotent(t *testing.T) {
	svc, repo, ledger := newWalletFixture(student("u1", decimal.Zero))

	first, _, err := svc.Deposit("u1", dec("40"), "card", "ref-123")
	if err != nil {
		t.Fatalf("first deposit failed: %v", err)
	}

	replay, balance, err := svc.Deposit("u1", dec("40"), "card", "ref-123")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.ID != first.ID {
		t.Errorf("replay returned a new entry %s, want original %s", replay.ID, first.ID)
	}
	if !balance.Equal(dec("40")) {
		t.Errorf("balance after replay = %s, want 40", balance)
	}
	if !repo.balance("u1").Equal(dec("40")) {
		t.Errorf("stored balance = %s, want 40 (credited once)", repo.balance("u1"))
	}
	if n := ledger.countByType("u1", models.TxDeposit); n != 1 {
		t.Errorf("ledger deposit entries = %d, want 1", n)
	}
}

func TestDepositFailedCommitLeavesNoState(t *testing.T) {
	svc, repo, ledger := newWalletFixture(student("u1", decimal.Zero))
	ledger.commitErr = errors.New("transaction aborted")

	if _, _, err := svc.Deposit("u1", dec("40"), "card", "conf-9"); err == nil {
		t.Fatal("deposit succeeded despite aborted commit")
	}
	if !repo.balance("u1").IsZero() {
		t.Errorf("balance = %s after failed deposit, want 0", repo.balance("u1"))
	}
	if len(ledger.entries) != 0 {
		t.Errorf("ledger entries = %d after failed deposit, want 0", len(ledger.entries))
	}

	// A retry of the same confirmation ref now credits exactly once.
	ledger.commitErr = nil
	if _, balance, err := svc.Deposit("u1", dec("40"), "card", "conf-9"); err != nil {
		t.Fatalf("retry failed: %v", err)
	} else if !balance.Equal(dec("40")) {
		t.Errorf("balance after retry = %s, want 40", balance)
	}
	if n := ledger.countByType("u1", models.TxDeposit); n != 1 {
		t.Errorf("ledger deposit entries = %d, want 1", n)
	}
}

func TestConcurrentDepositsSameRefCreditOnce(t *testing.T) {
	svc, repo, ledger := newWalletFixture(student("u1", decimal.Zero))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Deposit("u1", dec("40"), "card", "conf-1"); err != nil {
				t.Errorf("deposit failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if !repo.balance("u1").Equal(dec("40")) {
		t.Errorf("balance = %s after racing confirmations, want 40", repo.balance("u1"))
	}
	if n := ledger.countByType("u1", models.TxDeposit); n != 1 {
		t.Errorf("ledger deposit entries = %d, want 1", n)
	}
}

func TestWithdrawRejectsOverdraft(t *testing.T) {
	svc, repo, ledger := newWalletFixture(student("u1", dec("30")))

	if _, _, err := svc.Withdraw("u1", dec("30.01"), "bank", ""); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraft: got %v, want ErrInsufficientBalance", err)
	}
	if !repo.balance("u1").Equal(dec("30")) {
		t.Errorf("balance changed on refused withdrawal: %s", repo.balance("u1"))
	}
	if n := ledger.countByType("u1", models.TxWithdrawal); n != 0 {
		t.Errorf("ledger withdrawal entries = %d, want 0", n)
	}
}

func TestWithdrawDebitsWallet(t *testing.T) {
	svc, repo, _ := newWalletFixture(student("u1", dec("30")))

	tx, balance, err := svc.Withdraw("u1", dec("30"), "bank", "payout-1")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if !balance.IsZero() || !repo.balance("u1").IsZero() {
		t.Errorf("balance = %s / %s, want 0", balance, repo.balance("u1"))
	}
	if tx.Type != models.TxWithdrawal {
		t.Errorf("entry type = %s, want withdrawal", tx.Type)
	}

	// Replaying the payout confirmation must not debit again.
	replay, balance, err := svc.Withdraw("u1", dec("30"), "bank", "payout-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.ID != tx.ID {
		t.Errorf("replay returned a new entry")
	}
	if !balance.IsZero() {
		t.Errorf("balance after replay = %s, want 0", balance)
	}
}

func TestSettleTaskMovesReward(t *testing.T) {
	svc, repo, ledger := newWalletFixture(vendor("v1", dec("100")), student("s1", dec("5")))

	task := &models.Task{
		ID:           "t1",
		Description:  "Deliver groceries from the market to the dorm",
		RewardAmount: dec("40"),
		Status:       models.TaskPendingReview,
		CreatedBy:    "v1",
		AssignedTo:   "s1",
	}
	ledger.tasks["t1"] = &models.Task{ID: "t1", Status: models.TaskPendingReview}

	if err := svc.SettleTask(context.Background(), task); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	if !repo.balance("v1").Equal(dec("60")) {
		t.Errorf("vendor balance = %s, want 60", repo.balance("v1"))
	}
	if !repo.balance("s1").Equal(dec("45")) {
		t.Errorf("student balance = %s, want 45", repo.balance("s1"))
	}
	if n := ledger.countByType("v1", models.TxTaskPayment); n != 1 {
		t.Errorf("vendor task-payment entries = %d, want 1", n)
	}
	if n := ledger.countByType("s1", models.TxTaskPayment); n != 1 {
		t.Errorf("student task-payment entries = %d, want 1", n)
	}
	if got := ledger.tasks["t1"].Status; got != models.TaskCompleted {
		t.Errorf("task status = %s, want completed", got)
	}
}

func TestSettleTaskInsufficientBalanceAborts(t *testing.T) {
	svc, repo, ledger := newWalletFixture(vendor("v1", dec("10")), student("s1", decimal.Zero))

	task := &models.Task{
		ID:           "t1",
		Description:  "Pick up a parcel",
		RewardAmount: dec("40"),
		Status:       models.TaskPendingReview,
		CreatedBy:    "v1",
		AssignedTo:   "s1",
	}
	ledger.tasks["t1"] = &models.Task{ID: "t1", Status: models.TaskPendingReview}

	err := svc.SettleTask(context.Background(), task)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if !repo.balance("v1").Equal(dec("10")) || !repo.balance("s1").IsZero() {
		t.Errorf("balances changed on aborted settlement: %s / %s",
			repo.balance("v1"), repo.balance("s1"))
	}
	if len(ledger.entries) != 0 {
		t.Errorf("ledger entries = %d, want 0", len(ledger.entries))
	}
	if got := ledger.tasks["t1"].Status; got != models.TaskPendingReview {
		t.Errorf("task status = %s, want pending-review", got)
	}
}

func TestSettleTaskRequiresPendingReview(t *testing.T) {
	svc, _, _ := newWalletFixture(vendor("v1", dec("100")), student("s1", decimal.Zero))

	task := &models.Task{
		ID:           "t1",
		RewardAmount: dec("40"),
		Status:       models.TaskInProgress,
		CreatedBy:    "v1",
		AssignedTo:   "s1",
	}
	if err := svc.SettleTask(context.Background(), task); !errors.Is(err, ErrTaskNotPendingReview) {
		t.Fatalf("got %v, want ErrTaskNotPendingReview", err)
	}
}

func TestTransactionsFiltersByType(t *testing.T) {
	svc, _, ledger := newWalletFixture(student("u1", decimal.Zero))

	ledger.entries = []models.Transaction{
		{ID: "a", UserID: "u1", Type: models.TxDeposit},
		{ID: "b", UserID: "u1", Type: models.TxWithdrawal},
		{ID: "c", UserID: "u1", Type: models.TxDeposit},
		{ID: "d", UserID: "other", Type: models.TxDeposit},
	}

	txs, pagination, err := svc.Transactions("u1", models.TransactionFilter{Type: models.TxDeposit, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("transactions failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d entries, want 2", len(txs))
	}
	if pagination.Total != 2 || pagination.Pages != 1 {
		t.Errorf("pagination = %+v, want total 2 pages 1", pagination)
	}
}
