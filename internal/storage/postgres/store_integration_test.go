package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/payflowhq/payflow-backend/internal/models"
	"github.com/payflowhq/payflow-backend/internal/storage"
)

// TestPostgresTransferIntegration exercises the atomic transfer path against
// a live database. Run with RUN_PG_INTEGRATION=true and a DATABASE_URL.
func TestPostgresTransferIntegration(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run this integration test")
	}
	_ = godotenv.Load("../../../.env")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	suffix := time.Now().UnixNano()
	sender, err := store.CreateUser(ctx, models.User{
		Email:        fmt.Sprintf("itest_sender_%d@example.com", suffix),
		Name:         "Integration Sender",
		PasswordHash: "x",
	}, 10000, "INR")
	if err != nil {
		t.Fatalf("create sender: %v", err)
	}
	receiver, err := store.CreateUser(ctx, models.User{
		Email:        fmt.Sprintf("itest_receiver_%d@example.com", suffix),
		Name:         "Integration Receiver",
		PasswordHash: "x",
	}, 500, "INR")
	if err != nil {
		t.Fatalf("create receiver: %v", err)
	}

	entry, err := store.Transfer(ctx, sender.ID, receiver.ID, 3000, sender.Name, receiver.Name)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if entry.Amount != 3000 {
		t.Errorf("entry amount = %d, want 3000", entry.Amount)
	}

	senderAcc, err := store.GetAccount(ctx, sender.ID)
	if err != nil {
		t.Fatalf("get sender account: %v", err)
	}
	if senderAcc.Balance != 7000 {
		t.Errorf("sender balance = %d, want 7000", senderAcc.Balance)
	}
	receiverAcc, err := store.GetAccount(ctx, receiver.ID)
	if err != nil {
		t.Fatalf("get receiver account: %v", err)
	}
	if receiverAcc.Balance != 3500 {
		t.Errorf("receiver balance = %d, want 3500", receiverAcc.Balance)
	}

	// Overdraft attempt leaves both rows untouched.
	if _, err := store.Transfer(ctx, sender.ID, receiver.ID, 1_000_000, sender.Name, receiver.Name); !errors.Is(err, storage.ErrInsufficientFunds) {
		t.Fatalf("overdraft error = %v, want ErrInsufficientFunds", err)
	}
	senderAcc, _ = store.GetAccount(ctx, sender.ID)
	if senderAcc.Balance != 7000 {
		t.Errorf("sender balance after overdraft = %d, want 7000", senderAcc.Balance)
	}

	entries, err := store.ListByParticipant(ctx, sender.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != entry.ID {
		t.Errorf("ledger entries = %+v, want just the committed transfer", entries)
	}
}
