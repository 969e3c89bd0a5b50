package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barista/internal/domain"
	apperrors "barista/internal/errors"
	"barista/internal/store"
)

func TestRunInTx_RollsBackOnError(t *testing.T) {
	st := New()
	ctx := context.Background()

	var tableID uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table := &domain.Table{Number: 1}
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
		order := &domain.Order{TableID: tableID, Status: domain.OrderStatusPending}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing from the failed unit of work is visible.
	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		table, err := tx.GetTable(ctx, tableID)
		require.NoError(t, err)
		assert.Equal(t, domain.TableStatusIdle, table.Status)

		orders, err := tx.ListOrdersByTable(ctx, tableID)
		require.NoError(t, err)
		assert.Empty(t, orders)
		return nil
	})
	require.NoError(t, err)
}

func TestInsertOrder_AssignsIDAndOrderNo(t *testing.T) {
	st := New()
	ctx := context.Background()

	var first, second *domain.Order
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		first = &domain.Order{Status: domain.OrderStatusPending, Items: []domain.OrderItem{{Name: "Latte", Quantity: 1, Price: 150}}}
		if err := tx.InsertOrder(ctx, first); err != nil {
			return err
		}
		second = &domain.Order{Status: domain.OrderStatusPending}
		return tx.InsertOrder(ctx, second)
	})
	require.NoError(t, err)

	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, "ORD-0001", first.OrderNo)
	assert.Equal(t, uint(2), second.ID)
	assert.Equal(t, "ORD-0002", second.OrderNo)
	assert.Equal(t, first.ID, first.Items[0].OrderID)
}

func TestGetOrder_ReturnsCopy(t *testing.T) {
	st := New()
	ctx := context.Background()

	var id uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order := &domain.Order{
			Status: domain.OrderStatusPending,
			Items:  []domain.OrderItem{{Name: "Latte", Quantity: 1, Price: 150, Modifiers: []string{"oat milk"}}},
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		id = order.ID
		return nil
	})
	require.NoError(t, err)

	// Mutating a fetched order must not leak into the store.
	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		order.Status = domain.OrderStatusServed
		order.Items[0].Modifiers[0] = "mutated"
		return nil
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		order, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.Equal(t, "oat milk", order.Items[0].Modifiers[0])
		return nil
	})
	require.NoError(t, err)
}

func TestGetOrder_NotFound(t *testing.T) {
	st := New()

	err := st.RunInTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.GetOrder(ctx, 999)
		return err
	})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestListOrdersByTable_FiltersByStatus(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, status := range []string{
			domain.OrderStatusPending, domain.OrderStatusApproved,
			domain.OrderStatusRejected, domain.OrderStatusServed,
		} {
			order := &domain.Order{TableID: 7, Status: status}
			if err := tx.InsertOrder(ctx, order); err != nil {
				return err
			}
		}
		other := &domain.Order{TableID: 8, Status: domain.OrderStatusPending}
		return tx.InsertOrder(ctx, other)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		live, err := tx.ListOrdersByTable(ctx, 7, domain.OrderStatusPending, domain.OrderStatusApproved)
		require.NoError(t, err)
		assert.Len(t, live, 2)

		all, err := tx.ListOrdersByTable(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, all, 4)
		return nil
	})
	require.NoError(t, err)
}

func TestSaveLoyaltyAccount_UpsertsByCustomer(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		account := &domain.LoyaltyAccount{CustomerID: 3, Balance: 10, TotalEarned: 10}
		if err := tx.SaveLoyaltyAccount(ctx, account); err != nil {
			return err
		}
		assert.NotZero(t, account.ID)

		account.Balance = 25
		account.TotalEarned = 25
		return tx.SaveLoyaltyAccount(ctx, account)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		account, err := tx.GetLoyaltyAccount(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 25, account.Balance)
		assert.Equal(t, 25, account.TotalEarned)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateWalletTransactionStatus(t *testing.T) {
	st := New()
	ctx := context.Background()

	var txnID uint
	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn := &domain.WalletTransaction{
			CustomerID: 1,
			Type:       domain.WalletTxTopup,
			Status:     domain.WalletTxStatusPending,
			Amount:     50,
		}
		if err := tx.InsertWalletTransaction(ctx, txn); err != nil {
			return err
		}
		txnID = txn.ID
		return nil
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateWalletTransactionStatus(ctx, txnID, domain.WalletTxStatusApproved)
	})
	require.NoError(t, err)

	err = st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := tx.GetWalletTransaction(ctx, txnID)
		require.NoError(t, err)
		assert.Equal(t, domain.WalletTxStatusApproved, txn.Status)
		return nil
	})
	require.NoError(t, err)
}

func TestFindCustomerByPhone(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		customer := &domain.Customer{Name: "Asha", Phone: "5551234"}
		if err := tx.InsertCustomer(ctx, customer); err != nil {
			return err
		}

		found, err := tx.FindCustomerByPhone(ctx, "5551234")
		require.NoError(t, err)
		assert.Equal(t, customer.ID, found.ID)

		_, err = tx.FindCustomerByPhone(ctx, "0000000")
		_, ok := apperrors.IsNotFoundError(err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}
