package mysqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
	"barista/internal/store"
	"barista/internal/testutil"
)

// Integration tests; skipped when no MySQL is listening on localhost:3306.

func TestRunInTx_OrderRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	st := New(db)
	ctx := context.Background()

	var tableID, orderID uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table := &domain.Table{Number: 1}
		if err := tx.InsertTable(ctx, table); err != nil {
			return err
		}
		tableID = table.ID

		order := &domain.Order{
			TableID:       tableID,
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusUnpaid,
			Items: []domain.OrderItem{
				{Name: "Latte", Quantity: 2, Price: 150, Modifiers: []string{"oat milk", "extra shot"}},
				{Name: "Croissant", Quantity: 1, Price: 100},
			},
		}
		order.Total = order.ComputeTotal()
		order.AppendTimeline("Order Created", "cashier-1", "", time.Now())
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		orderID = order.ID
		assert.NotEmpty(t, order.OrderNo)
		return nil
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, 400.0, order.Total)
		require.Len(t, order.Items, 2)
		assert.Equal(t, []string{"oat milk", "extra shot"}, order.Items[0].Modifiers)
		require.Len(t, order.Timeline, 1)
		assert.Equal(t, "Order Created", order.Timeline[0].Action)

		order.Status = domain.OrderStatusApproved
		order.AppendTimeline("Order Approved", "manager", "", time.Now())
		return tx.UpdateOrder(ctx, order)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order, err := tx.GetOrder(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusApproved, order.Status)
		assert.Len(t, order.Timeline, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	st := New(db)
	ctx := context.Background()

	var tableID uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table := &domain.Table{Number: 2}
		if err := tx.InsertTable(ctx, table); err != nil {
			return err
		}
		tableID = table.ID
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.UpdateTableStatus(ctx, tableID, domain.TableStatusOccupied); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table, err := tx.GetTable(ctx, tableID)
		require.NoError(t, err)
		assert.Equal(t, domain.TableStatusIdle, table.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestGetOrder_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	st := New(db)

	err := st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.GetOrder(ctx, 99999)
		return err
	})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestWalletAndLoyaltyRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	st := New(db)
	ctx := context.Background()

	var customerID uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		customer := &domain.Customer{Name: "Asha", Phone: "5551234"}
		if err := tx.InsertCustomer(ctx, customer); err != nil {
			return err
		}
		customerID = customer.ID

		account := &domain.LoyaltyAccount{CustomerID: customerID, Balance: 120, TotalEarned: 120}
		if err := tx.SaveLoyaltyAccount(ctx, account); err != nil {
			return err
		}
		if err := tx.InsertLoyaltyTransaction(ctx, &domain.LoyaltyTransaction{
			CustomerID: customerID, Type: domain.LoyaltyTxEarned, Delta: 120,
		}); err != nil {
			return err
		}

		wallet := &domain.Wallet{CustomerID: customerID, Balance: 50}
		return tx.SaveWallet(ctx, wallet)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetLoyaltyAccount(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, 120, account.Balance)

		txns, err := tx.ListLoyaltyTransactions(ctx, customerID)
		require.NoError(t, err)
		assert.Len(t, txns, 1)

		wallet, err := tx.GetWallet(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, 50.0, wallet.Balance)

		wallet.Balance = 30
		if err := tx.SaveWallet(ctx, wallet); err != nil {
			return err
		}
		return tx.InsertWalletTransaction(ctx, &domain.WalletTransaction{
			CustomerID: customerID, Type: domain.WalletTxPayment, Status: domain.WalletTxStatusApproved,
			Amount: 20, BalanceBefore: 50, BalanceAfter: 30,
		})
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		wallet, err := tx.GetWallet(ctx, customerID)
		require.NoError(t, err)
		assert.Equal(t, 30.0, wallet.Balance)
		return nil
	})
	require.NoError(t, err)
}
