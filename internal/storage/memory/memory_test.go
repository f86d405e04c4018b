package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

func TestCreateUserRejectsDuplicateEmailCaseInsensitive(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.CreateUser(ctx, models.User{Email: "Asha@Example.com", Name: "Asha"}, 0, "INR")
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, models.User{Email: "asha@example.COM", Name: "Imposter"}, 0, "INR")
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := store.FindByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	require.Equal(t, "Asha", found.Name)
}

func TestCreateUserSeedsAccount(t *testing.T) {
	store := New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Email: "a@b.com", Name: "A"}, 10000, "INR")
	require.NoError(t, err)

	acc, err := store.GetAccount(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), acc.Balance)
	require.Equal(t, "INR", acc.Currency)
}

func TestTransferConditionalDebitUnderContention(t *testing.T) {
	store := New()
	ctx := context.Background()

	sender, err := store.CreateUser(ctx, models.User{Email: "s@x.com", Name: "S"}, 300, "INR")
	require.NoError(t, err)
	receiver, err := store.CreateUser(ctx, models.User{Email: "r@x.com", Name: "R"}, 0, "INR")
	require.NoError(t, err)

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = store.Transfer(ctx, sender.ID, receiver.ID, 100, "S", "R")
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range results {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, storage.ErrInsufficientFunds)
			rejected++
		}
	}
	require.Equal(t, 3, ok)
	require.Equal(t, attempts-3, rejected)

	senderAcc, _ := store.GetAccount(ctx, sender.ID)
	receiverAcc, _ := store.GetAccount(ctx, receiver.ID)
	require.Equal(t, int64(0), senderAcc.Balance)
	require.Equal(t, int64(300), receiverAcc.Balance)
}

func TestTransferUnknownAccounts(t *testing.T) {
	store := New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Email: "a@b.com", Name: "A"}, 100, "INR")
	require.NoError(t, err)

	_, err = store.Transfer(ctx, user.ID, 42, 50, "A", "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Transfer(ctx, 42, user.ID, 50, "ghost", "A")
	require.ErrorIs(t, err, storage.ErrNotFound)

	acc, _ := store.GetAccount(ctx, user.ID)
	require.Equal(t, int64(100), acc.Balance)
}

func TestListByParticipantOrdersNewestFirst(t *testing.T) {
	store := New()
	ctx := context.Background()

	a, _ := store.CreateUser(ctx, models.User{Email: "a@b.com", Name: "A"}, 1000, "INR")
	b, _ := store.CreateUser(ctx, models.User{Email: "b@b.com", Name: "B"}, 1000, "INR")

	for i := 0; i < 3; i++ {
		_, err := store.Transfer(ctx, a.ID, b.ID, 10, "A", "B")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	entries, err := store.ListByParticipant(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		require.False(t, prev.CreatedAt.Before(cur.CreatedAt), "entries out of order")
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			require.Greater(t, prev.ID, cur.ID)
		}
	}
}

func TestUpdateUserPartialFields(t *testing.T) {
	store := New()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{Email: "a@b.com", Name: "Asha Rao", PasswordHash: "old"}, 0, "INR")
	require.NoError(t, err)

	name := "Asha Iyer"
	updated, err := store.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Asha Iyer", updated.Name)
	require.Equal(t, "old", updated.PasswordHash)

	hash := "new"
	updated, err = store.UpdateUser(ctx, user.ID, storage.UserUpdate{PasswordHash: &hash})
	require.NoError(t, err)
	require.Equal(t, "Asha Iyer", updated.Name)
	require.Equal(t, "new", updated.PasswordHash)
}
