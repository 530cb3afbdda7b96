package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orderflow/internal/migrate"
	"orderflow/internal/models"
	"orderflow/internal/repository"
	"orderflow/pkg/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func setupRepo(t *testing.T) *repository.Repository {
	t.Helper()

	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateOrderDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.New(db)
}

func newOrder(email string) *models.Order {
	return &models.Order{
		CustomerEmail:    email,
		CustomerName:     "Ada",
		Status:           models.OrderStatusPending,
		TotalAmountCents: 998,
	}
}

func newItems(orderID uuid.UUID) []models.OrderItem {
	return []models.OrderItem{
		{OrderID: orderID, Position: 0, ProductID: "P1", ProductName: "Mechanical Keyboard", Quantity: 1, UnitPriceCents: 499, LineTotalCents: 499},
		{OrderID: orderID, Position: 1, ProductID: "P1", ProductName: "Mechanical Keyboard", Quantity: 1, UnitPriceCents: 499, LineTotalCents: 499},
	}
}

// placeOrderTx mirrors the service-level transaction: reserve the token,
// replay a completed reservation, otherwise create order plus items and mark
// the reservation completed.
func placeOrderTx(ctx context.Context, repo *repository.Repository, email, token string) (uuid.UUID, error) {
	var orderID uuid.UUID
	err := repo.Orders.WithTx(ctx, func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo, txKeys repository.IdempotencyRepo) error {
		existing, fresh, err := txKeys.Reserve(ctx, token)
		if err != nil {
			return err
		}
		if !fresh && existing.Status == models.IdempotencyStatusCompleted && existing.OrderID != nil {
			orderID = *existing.OrderID
			return nil
		}

		order := newOrder(email)
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}
		if err := txItems.BulkCreate(ctx, newItems(order.ID)); err != nil {
			return err
		}
		if err := txKeys.Complete(ctx, token, order.ID); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	return orderID, err
}

func TestOrderCreateAndReadBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := placeOrderTx(ctx, repo, "ada@example.com", "tok-read")
	if err != nil {
		t.Fatalf("placeOrderTx: %v", err)
	}

	got, err := repo.Orders.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("order not found after commit")
	}
	if got.TotalAmountCents != 998 || got.Status != models.OrderStatusPending {
		t.Fatalf("order fields mismatch: %+v", got)
	}
	if len(got.Items) != 2 {
		t.Fatalf("want 2 items (duplicate product kept distinct), got %d", len(got.Items))
	}
	for i, it := range got.Items {
		if it.Position != uint32(i) {
			t.Fatalf("items not ordered by position: %+v", got.Items)
		}
	}

	sum, err := repo.OrderItems.SumByOrder(ctx, id)
	if err != nil {
		t.Fatalf("SumByOrder: %v", err)
	}
	if sum != got.TotalAmountCents {
		t.Fatalf("line totals %d do not match order total %d", sum, got.TotalAmountCents)
	}
}

func TestTransactionRollbackLeavesNoRows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	fault := errors.New("simulated failure after item write")
	var stagedID uuid.UUID
	err := repo.Orders.WithTx(ctx, func(txOrders repository.OrderRepo, txItems repository.OrderItemRepo, txKeys repository.IdempotencyRepo) error {
		if _, _, err := txKeys.Reserve(ctx, "tok-rollback"); err != nil {
			return err
		}
		order := newOrder("ada@example.com")
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}
		stagedID = order.ID
		if err := txItems.BulkCreate(ctx, newItems(order.ID)); err != nil {
			return err
		}
		return fault
	})
	if !errors.Is(err, fault) {
		t.Fatalf("want injected fault, got %v", err)
	}

	exists, err := repo.Orders.Exists(ctx, stagedID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("rolled back order is visible")
	}
	items, err := repo.OrderItems.GetByOrderID(ctx, stagedID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rolled back items are visible: %d", len(items))
	}
	key, err := repo.Idempotency.Get(ctx, "tok-rollback")
	if err != nil {
		t.Fatalf("Get key: %v", err)
	}
	if key != nil {
		t.Fatal("rollback must release the idempotency reservation")
	}

	// the token is free again, the retry goes through
	if _, err := placeOrderTx(ctx, repo, "ada@example.com", "tok-rollback"); err != nil {
		t.Fatalf("retry after rollback: %v", err)
	}
}

func TestIdempotentReplayReturnsSameOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, err := placeOrderTx(ctx, repo, "ada@example.com", "tok-replay")
	if err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	second, err := placeOrderTx(ctx, repo, "ada@example.com", "tok-replay")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if first != second {
		t.Fatalf("replay returned a different order: %s vs %s", first, second)
	}

	list, err := repo.Orders.ListByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("replay must not create a second order, got %d", len(list))
	}

	key, err := repo.Idempotency.Get(ctx, "tok-replay")
	if err != nil {
		t.Fatalf("Get key: %v", err)
	}
	if key == nil || key.Status != models.IdempotencyStatusCompleted || key.OrderID == nil || *key.OrderID != first {
		t.Fatalf("completed reservation mismatch: %+v", key)
	}
}

func TestConcurrentSameTokenCreatesOneOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	const workers = 4
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = placeOrderTx(ctx, repo, "race@example.com", "tok-race")
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("workers got different order ids: %s vs %s", ids[0], ids[i])
		}
	}

	list, err := repo.Orders.ListByEmail(ctx, "race@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("concurrent submissions must resolve to one order, got %d", len(list))
	}
}

func TestListByEmailMostRecentFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tokens := []string{"tok-l1", "tok-l2", "tok-l3"}
	for _, tok := range tokens {
		if _, err := placeOrderTx(ctx, repo, "ada@example.com", tok); err != nil {
			t.Fatalf("placeOrderTx %s: %v", tok, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := placeOrderTx(ctx, repo, "other@example.com", "tok-other"); err != nil {
		t.Fatalf("placeOrderTx other: %v", err)
	}

	list, err := repo.Orders.ListByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("want 3 orders for ada, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Fatal("orders not sorted most recent first")
		}
	}

	none, err := repo.Orders.ListByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("ListByEmail nobody: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("unknown email must yield no orders, got %d", len(none))
	}
}

func TestProductRepoLookup(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed := models.Product{ID: "P1", Name: "Mechanical Keyboard", PriceCents: 499, Stock: 10}
	if err := repo.DB.WithContext(ctx).Create(&seed).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	p, err := repo.Products.GetByID(ctx, "P1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p == nil || p.PriceCents != 499 || p.Name != "Mechanical Keyboard" {
		t.Fatalf("product mismatch: %+v", p)
	}

	missing, err := repo.Products.GetByID(ctx, "GONE")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing product must be nil, got %+v", missing)
	}
}
