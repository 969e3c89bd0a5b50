// Package memstore is an in-memory Ledger Store used as the `memory` driver
// and by tests. Units of work run against a deep copy of the state under a
// single mutex; the copy is swapped in on success, so rollback-on-error and
// write serialization come for free.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
	"barista/internal/store"
)

type state struct {
	orders     map[uint]*domain.Order
	tables     map[uint]*domain.Table
	customers  map[uint]*domain.Customer
	loyalty    map[uint]*domain.LoyaltyAccount // keyed by customer ID
	loyaltyTxn []*domain.LoyaltyTransaction
	wallets    map[uint]*domain.Wallet // keyed by customer ID
	walletTxn  map[uint]*domain.WalletTransaction
	refunds    map[uint]*domain.Refund
	seq        map[string]uint
}

func newState() *state {
	return &state{
		orders:    map[uint]*domain.Order{},
		tables:    map[uint]*domain.Table{},
		customers: map[uint]*domain.Customer{},
		loyalty:   map[uint]*domain.LoyaltyAccount{},
		wallets:   map[uint]*domain.Wallet{},
		walletTxn: map[uint]*domain.WalletTransaction{},
		refunds:   map[uint]*domain.Refund{},
		seq:       map[string]uint{},
	}
}

func (s *state) next(entity string) uint {
	s.seq[entity]++
	return s.seq[entity]
}

func (s *state) clone() *state {
	c := newState()
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	for id, t := range s.tables {
		cp := *t
		c.tables[id] = &cp
	}
	for id, cu := range s.customers {
		cp := *cu
		c.customers[id] = &cp
	}
	for id, a := range s.loyalty {
		cp := *a
		c.loyalty[id] = &cp
	}
	for _, txn := range s.loyaltyTxn {
		cp := *txn
		c.loyaltyTxn = append(c.loyaltyTxn, &cp)
	}
	for id, w := range s.wallets {
		cp := *w
		c.wallets[id] = &cp
	}
	for id, txn := range s.walletTxn {
		cp := *txn
		c.walletTxn[id] = &cp
	}
	for id, r := range s.refunds {
		cp := *r
		c.refunds[id] = &cp
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	for i, item := range o.Items {
		cp.Items[i] = item
		cp.Items[i].Modifiers = append([]string(nil), item.Modifiers...)
	}
	cp.Timeline = append([]domain.TimelineEntry(nil), o.Timeline...)
	if o.CustomerID != nil {
		id := *o.CustomerID
		cp.CustomerID = &id
	}
	if o.ServedAt != nil {
		at := *o.ServedAt
		cp.ServedAt = &at
	}
	return &cp
}

type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type memTx struct {
	st *state
}

// orders

func (t *memTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	order.ID = t.st.next("order")
	order.OrderNo = fmt.Sprintf("ORD-%04d", order.ID)
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].ID = t.st.next("orderItem")
		order.Items[i].OrderID = order.ID
	}
	t.st.orders[order.ID] = copyOrder(order)
	return nil
}

func (t *memTx) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	return copyOrder(o), nil
}

func (t *memTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if _, ok := t.st.orders[order.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", order.ID))
	}
	order.UpdatedAt = time.Now()
	t.st.orders[order.ID] = copyOrder(order)
	return nil
}

func (t *memTx) ListOrdersByTable(ctx context.Context, tableID uint, statuses ...string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range t.st.orders {
		if o.TableID != tableID {
			continue
		}
		if len(statuses) > 0 && !contains(statuses, o.Status) {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sortOrders(out)
	return out, nil
}

func (t *memTx) ListOrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range t.st.orders {
		if o.Status == status {
			out = append(out, *copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// tables

func (t *memTx) InsertTable(ctx context.Context, table *domain.Table) error {
	table.ID = t.st.next("table")
	now := time.Now()
	table.CreatedAt = now
	table.UpdatedAt = now
	if table.Status == "" {
		table.Status = domain.TableStatusIdle
	}
	cp := *table
	t.st.tables[table.ID] = &cp
	return nil
}

func (t *memTx) GetTable(ctx context.Context, id uint) (*domain.Table, error) {
	tbl, ok := t.st.tables[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	cp := *tbl
	return &cp, nil
}

func (t *memTx) ListTables(ctx context.Context) ([]domain.Table, error) {
	var out []domain.Table
	for _, tbl := range t.st.tables {
		out = append(out, *tbl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (t *memTx) UpdateTableStatus(ctx context.Context, id uint, status string) error {
	tbl, ok := t.st.tables[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	tbl.Status = status
	tbl.UpdatedAt = time.Now()
	return nil
}

// customers

func (t *memTx) InsertCustomer(ctx context.Context, customer *domain.Customer) error {
	customer.ID = t.st.next("customer")
	customer.CreatedAt = time.Now()
	cp := *customer
	t.st.customers[customer.ID] = &cp
	return nil
}

func (t *memTx) GetCustomer(ctx context.Context, id uint) (*domain.Customer, error) {
	c, ok := t.st.customers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) FindCustomerByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	for _, c := range t.st.customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer with phone %s not found", phone))
}

// loyalty

func (t *memTx) GetLoyaltyAccount(ctx context.Context, customerID uint) (*domain.LoyaltyAccount, error) {
	a, ok := t.st.loyalty[customerID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("loyalty account for customer %d not found", customerID))
	}
	cp := *a
	return &cp, nil
}

func (t *memTx) SaveLoyaltyAccount(ctx context.Context, account *domain.LoyaltyAccount) error {
	now := time.Now()
	if account.ID == 0 {
		account.ID = t.st.next("loyalty")
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	cp := *account
	t.st.loyalty[account.CustomerID] = &cp
	return nil
}

func (t *memTx) InsertLoyaltyTransaction(ctx context.Context, txn *domain.LoyaltyTransaction) error {
	txn.ID = t.st.next("loyaltyTxn")
	txn.CreatedAt = time.Now()
	cp := *txn
	t.st.loyaltyTxn = append(t.st.loyaltyTxn, &cp)
	return nil
}

func (t *memTx) ListLoyaltyTransactions(ctx context.Context, customerID uint) ([]domain.LoyaltyTransaction, error) {
	var out []domain.LoyaltyTransaction
	for _, txn := range t.st.loyaltyTxn {
		if txn.CustomerID == customerID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

// wallets

func (t *memTx) GetWallet(ctx context.Context, customerID uint) (*domain.Wallet, error) {
	w, ok := t.st.wallets[customerID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("wallet for customer %d not found", customerID))
	}
	cp := *w
	return &cp, nil
}

func (t *memTx) SaveWallet(ctx context.Context, wallet *domain.Wallet) error {
	now := time.Now()
	if wallet.ID == 0 {
		wallet.ID = t.st.next("wallet")
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now
	cp := *wallet
	t.st.wallets[wallet.CustomerID] = &cp
	return nil
}

func (t *memTx) InsertWalletTransaction(ctx context.Context, txn *domain.WalletTransaction) error {
	txn.ID = t.st.next("walletTxn")
	txn.CreatedAt = time.Now()
	cp := *txn
	t.st.walletTxn[txn.ID] = &cp
	return nil
}

func (t *memTx) GetWalletTransaction(ctx context.Context, id uint) (*domain.WalletTransaction, error) {
	txn, ok := t.st.walletTxn[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("wallet transaction with id %d not found", id))
	}
	cp := *txn
	return &cp, nil
}

func (t *memTx) UpdateWalletTransactionStatus(ctx context.Context, id uint, status string) error {
	txn, ok := t.st.walletTxn[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("wallet transaction with id %d not found", id))
	}
	txn.Status = status
	return nil
}

// refunds

func (t *memTx) InsertRefund(ctx context.Context, refund *domain.Refund) error {
	refund.ID = t.st.next("refund")
	if refund.RequestedAt.IsZero() {
		refund.RequestedAt = time.Now()
	}
	cp := *refund
	t.st.refunds[refund.ID] = &cp
	return nil
}

func (t *memTx) GetRefund(ctx context.Context, id uint) (*domain.Refund, error) {
	r, ok := t.st.refunds[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("refund with id %d not found", id))
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) UpdateRefund(ctx context.Context, refund *domain.Refund) error {
	if _, ok := t.st.refunds[refund.ID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("refund with id %d not found", refund.ID))
	}
	cp := *refund
	t.st.refunds[refund.ID] = &cp
	return nil
}
