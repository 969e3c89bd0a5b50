package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"barista/internal/bus"
	"barista/internal/domain"
	apperrors "barista/internal/errors"
	ledgerservice "barista/internal/ledger/service"
	"barista/internal/store"
	"barista/internal/store/memstore"
)

type recordedEvent struct {
	channel string
	event   bus.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(channel string, event bus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{channel: channel, event: event})
}

func (p *recordingPublisher) eventTypes(channel string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, rec := range p.events {
		if rec.channel == channel {
			out = append(out, rec.event.Type)
		}
	}
	return out
}

type fakeQueue struct {
	mu     sync.Mutex
	orders []*domain.Order
}

func (q *fakeQueue) Enqueue(order *domain.Order) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orders = append(q.orders, order)
}

func (q *fakeQueue) enqueued() []*domain.Order {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*domain.Order(nil), q.orders...)
}

func newTestService(t *testing.T) (*OrderService, *memstore.Store, *recordingPublisher, *fakeQueue) {
	t.Helper()
	st := memstore.New()
	pub := &recordingPublisher{}
	queue := &fakeQueue{}
	ledger := ledgerservice.NewLedgerService(st, pub, zap.NewNop())
	svc := NewOrderService(st, ledger, queue, pub, zap.NewNop())
	return svc, st, pub, queue
}

func seedTable(t *testing.T, st *memstore.Store) uint {
	t.Helper()
	var id uint
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		table := &domain.Table{Number: 1}
		if err := tx.InsertTable(ctx, table); err != nil {
			return err
		}
		id = table.ID
		return nil
	})
	require.NoError(t, err)
	return id
}

func tableStatus(t *testing.T, st *memstore.Store, id uint) string {
	t.Helper()
	var status string
	err := st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		table, err := tx.GetTable(ctx, id)
		if err != nil {
			return err
		}
		status = table.Status
		return nil
	})
	require.NoError(t, err)
	return status
}

func twoItems() []domain.OrderItem {
	return []domain.OrderItem{
		{Name: "Latte", Quantity: 2, Price: 150, Modifiers: []string{"oat milk"}},
		{Name: "Croissant", Quantity: 1, Price: 100},
	}
}

func TestCreate_RejectsEmptyOrder(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	_, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "items", ve.Details[0].Field)
}

func TestCreate_UnknownTable(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateOrderInput{TableID: 42, Items: twoItems()})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCreate_CashierOrder(t *testing.T) {
	svc, st, pub, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:      tableID,
		Items:        twoItems(),
		CashierOrder: true,
		CreatedBy:    "cashier-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-0001", order.OrderNo)
	assert.Equal(t, 400.0, order.Total)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Nil(t, order.CustomerID)
	require.Len(t, order.Timeline, 1)
	assert.Equal(t, "Order Created", order.Timeline[0].Action)
	assert.Equal(t, "cashier-1", order.Timeline[0].Actor)

	assert.Equal(t, domain.TableStatusOccupied, tableStatus(t, st, tableID))
	assert.Equal(t, []string{bus.EventOrderNew}, pub.eventTypes(bus.ChannelCashier))
}

func TestCreate_CustomerOrderWithMethodIsPaid(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:       tableID,
		Items:         twoItems(),
		PaymentMethod: domain.PaymentMethodCard,
		CustomerPhone: "5551234",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCard, order.PaymentMethod)
	require.NotNil(t, order.CustomerID)

	// The same phone maps to the same customer on the next order.
	again, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:       tableID,
		Items:         twoItems(),
		PaymentMethod: domain.PaymentMethodCash,
		CustomerPhone: "5551234",
	})
	require.NoError(t, err)
	assert.Equal(t, *order.CustomerID, *again.CustomerID)
}

func TestCreate_ReclaimsTable(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	_, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)

	assert.Equal(t, domain.TableStatusOccupied, tableStatus(t, st, tableID))
}

func TestConfirmPayment_Cash(t *testing.T) {
	svc, st, pub, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID: tableID, Items: twoItems(), CashierOrder: true,
	})
	require.NoError(t, err)

	paid, err := svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodCash, "cashier-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodCash, paid.PaymentMethod)
	assert.Equal(t, "Payment Confirmed", paid.Timeline[len(paid.Timeline)-1].Action)
	assert.Contains(t, pub.eventTypes(bus.ChannelCashier), bus.EventOrderUpdate)
}

func TestConfirmPayment_AlreadyPaid(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID: tableID, Items: twoItems(), CashierOrder: true,
	})
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodCash, "cashier-1")
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodCash, "cashier-1")
	_, ok := apperrors.IsAlreadyPaidError(err)
	assert.True(t, ok)
}

func TestConfirmPayment_TerminalOrder(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), order.ID, "out of stock", "manager")
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodCash, "cashier-1")
	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
}

func TestConfirmPayment_WalletDebitsBalance(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:       tableID,
		Items:         twoItems(),
		CustomerPhone: "5551234",
		CashierOrder:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	customerID := *order.CustomerID

	err = st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.SaveWallet(ctx, &domain.Wallet{CustomerID: customerID, Balance: 500})
	})
	require.NoError(t, err)

	paid, err := svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodWallet, "cashier-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)

	err = st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		wallet, err := tx.GetWallet(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, wallet.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestConfirmPayment_WalletInsufficientBalance(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:       tableID,
		Items:         twoItems(),
		CustomerPhone: "5551234",
		CashierOrder:  true,
	})
	require.NoError(t, err)

	err = st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.SaveWallet(ctx, &domain.Wallet{CustomerID: *order.CustomerID, Balance: 10})
	})
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodWallet, "cashier-1")
	_, ok := apperrors.IsInsufficientBalanceError(err)
	require.True(t, ok)

	// The whole unit of work rolled back: the order is still unpaid and the
	// wallet untouched.
	current, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, current.PaymentStatus)

	err = st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		wallet, err := tx.GetWallet(ctx, *order.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, wallet.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestApprove_AccruesPointsAndEnqueuesPrint(t *testing.T) {
	svc, st, pub, queue := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID:       tableID,
		Items:         twoItems(),
		PaymentMethod: domain.PaymentMethodCard,
		CustomerPhone: "5551234",
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), order.ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusApproved, approved.Status)
	assert.Equal(t, "Order Approved", approved.Timeline[len(approved.Timeline)-1].Action)

	enqueued := queue.enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, order.ID, enqueued[0].ID)

	assert.Contains(t, pub.eventTypes(bus.ChannelCashier), bus.EventOrderUpdate)

	// One point per whole currency unit of the paid total.
	err = st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetLoyaltyAccount(ctx, *order.CustomerID)
		require.NoError(t, err)
		assert.Equal(t, 400, account.Balance)
		assert.Equal(t, 400, account.TotalEarned)

		txns, err := tx.ListLoyaltyTransactions(ctx, *order.CustomerID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, domain.LoyaltyTxEarned, txns[0].Type)
		assert.Equal(t, 400, txns[0].Delta)
		return nil
	})
	require.NoError(t, err)
}

func TestApprove_NoPointsWithoutCustomer(t *testing.T) {
	svc, st, _, queue := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID: tableID, Items: twoItems(), CashierOrder: true,
	})
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), order.ID, domain.PaymentMethodCash, "cashier-1")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), order.ID, "manager")
	require.NoError(t, err)
	assert.Len(t, queue.enqueued(), 1)
}

func TestApprove_CashierOrderRequiresPayment(t *testing.T) {
	svc, st, _, queue := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableID: tableID, Items: twoItems(), CashierOrder: true,
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), order.ID, "manager")
	_, ok := apperrors.IsPaymentRequiredError(err)
	require.True(t, ok)
	assert.Empty(t, queue.enqueued())
}

func TestApprove_OnlyFromPending(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), order.ID, "manager")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), order.ID, "manager")
	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
}

func TestApprove_ConcurrentSingleWinner(t *testing.T) {
	svc, st, _, queue := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)

	const racers = 8
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Approve(context.Background(), order.ID, "manager")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	winners, losers := 0, 0
	for err := range errs {
		if err == nil {
			winners++
			continue
		}
		_, ok := apperrors.IsInvalidTransitionError(err)
		require.True(t, ok, "unexpected error: %v", err)
		losers++
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, racers-1, losers)
	assert.Len(t, queue.enqueued(), 1)
}

func TestReject_ReleasesTable(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), order.ID, "out of stock", "manager")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRejected, rejected.Status)
	assert.Equal(t, "out of stock", rejected.Timeline[len(rejected.Timeline)-1].Note)
	assert.Equal(t, domain.TableStatusIdle, tableStatus(t, st, tableID))
}

func TestReject_KeepsTableWhileAnotherOrderLives(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	first, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), first.ID, "duplicate", "manager")
	require.NoError(t, err)
	assert.Equal(t, domain.TableStatusOccupied, tableStatus(t, st, tableID))
}

func TestReject_TerminalOrder(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), order.ID, "no", "manager")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), order.ID, "again", "manager")
	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
}

func TestMarkServed(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), order.ID, "manager")
	require.NoError(t, err)

	served, err := svc.MarkServed(context.Background(), order.ID, "waiter")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusServed, served.Status)
	assert.NotNil(t, served.ServedAt)

	// Serving completes the kitchen side; the table waits for an explicit
	// release.
	assert.Equal(t, domain.TableStatusOccupied, tableStatus(t, st, tableID))
}

func TestMarkServed_OnlyFromApproved(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	order, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)

	_, err = svc.MarkServed(context.Background(), order.ID, "waiter")
	_, ok := apperrors.IsInvalidTransitionError(err)
	assert.True(t, ok)
}

func TestListByStatus(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	tableID := seedTable(t, st)

	first, err := svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateOrderInput{TableID: tableID, Items: twoItems()})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), first.ID, "manager")
	require.NoError(t, err)

	pending, err := svc.ListByStatus(context.Background(), domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := svc.ListByStatus(context.Background(), domain.OrderStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)
}
