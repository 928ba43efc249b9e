package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
	"github.com/cloudforge-erp/cloudforge-erp/internal/sales/quotes"
)

// mockFixture backs the quote port, the stock port and the order
// repository with one shared state so approval tests observe the
// same data a single database would hold. WithTx stages writes and
// discards them on error, like a rolled back transaction.
type mockFixture struct {
	mu          sync.Mutex
	quotes      map[string]quotes.Quote
	orders      map[string]SalesOrder
	inventories map[string]inventory.Inventory
}

func newMockFixture() *mockFixture {
	return &mockFixture{
		quotes:      make(map[string]quotes.Quote),
		orders:      make(map[string]SalesOrder),
		inventories: make(map[string]inventory.Inventory),
	}
}

func (m *mockFixture) addQuote(q quotes.Quote) {
	m.quotes[q.ID] = q
}

func (m *mockFixture) seedStock(materialID string, onHand, allocated float64) {
	m.inventories[materialID] = inventory.Inventory{MaterialID: materialID, OnHand: onHand, Allocated: allocated}
}

// QuotePort

func (m *mockFixture) GetQuote(ctx context.Context, id string) (*quotes.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, quotes.ErrNotFound
	}
	return &q, nil
}

// StockPort

func (m *mockFixture) Level(ctx context.Context, materialID string) (inventory.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventories[materialID]
	if !ok {
		return inventory.Inventory{}, inventory.ErrNotFound
	}
	return inv, nil
}

// RepositoryPort

func (m *mockFixture) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &mockTxRepo{
		quotes:      make(map[string]quotes.Quote, len(m.quotes)),
		orders:      make(map[string]SalesOrder, len(m.orders)),
		inventories: make(map[string]inventory.Inventory, len(m.inventories)),
	}
	for k, v := range m.quotes {
		staged.quotes[k] = v
	}
	for k, v := range m.orders {
		staged.orders[k] = v
	}
	for k, v := range m.inventories {
		staged.inventories[k] = v
	}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	m.quotes = staged.quotes
	m.orders = staged.orders
	m.inventories = staged.inventories
	return nil
}

func (m *mockFixture) Get(ctx context.Context, id string) (*SalesOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *mockFixture) List(ctx context.Context) ([]OrderWithShipments, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []OrderWithShipments{}
	for _, o := range m.orders {
		out = append(out, OrderWithShipments{SalesOrder: o, Status: "OPEN", Shipments: []ShipmentInfo{}})
	}
	return out, nil
}

type mockTxRepo struct {
	quotes      map[string]quotes.Quote
	orders      map[string]SalesOrder
	inventories map[string]inventory.Inventory
}

func (t *mockTxRepo) MarkQuoteApproved(ctx context.Context, quoteID string) (bool, error) {
	q, ok := t.quotes[quoteID]
	if !ok || q.Status != quotes.StatusDraft {
		return false, nil
	}
	q.Status = quotes.StatusApproved
	t.quotes[quoteID] = q
	return true, nil
}

func (t *mockTxRepo) InsertOrder(ctx context.Context, order SalesOrder) error {
	for _, existing := range t.orders {
		if existing.QuoteID == order.QuoteID {
			return ErrConflict
		}
	}
	t.orders[order.ID] = order
	return nil
}

func (t *mockTxRepo) Inventory() inventory.TxRepository {
	return &mockInventoryTx{inventories: t.inventories}
}

type mockInventoryTx struct {
	inventories map[string]inventory.Inventory
}

func (t *mockInventoryTx) GetForUpdate(ctx context.Context, materialID string) (inventory.Inventory, error) {
	inv, ok := t.inventories[materialID]
	if !ok {
		return inventory.Inventory{}, inventory.ErrNotFound
	}
	return inv, nil
}

func (t *mockInventoryTx) Save(ctx context.Context, inv inventory.Inventory) error {
	t.inventories[inv.MaterialID] = inv
	return nil
}

func (t *mockInventoryTx) InsertPurchase(ctx context.Context, entry inventory.PurchaseHistory) error {
	return nil
}

type quotePortFunc struct{ fixture *mockFixture }

func (p quotePortFunc) Get(ctx context.Context, id string) (*quotes.Quote, error) {
	return p.fixture.GetQuote(ctx, id)
}

func newTestService(fixture *mockFixture) *Service {
	return NewService(fixture, quotePortFunc{fixture: fixture}, fixture)
}

func draftQuote(id string, items ...quotes.QuoteItem) quotes.Quote {
	total := 0.0
	for i := range items {
		items[i].QuoteID = id
		items[i].LineOrder = i
		total += items[i].Quantity * items[i].Price
	}
	return quotes.Quote{
		ID:           id,
		CustomerName: "Apex Fabrication",
		Status:       quotes.StatusDraft,
		Total:        total,
		Items:        items,
	}
}

func TestApproveQuote(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 10, 0)
	fixture.seedStock("mat-2", 5, 0)
	fixture.addQuote(draftQuote("q-1",
		quotes.QuoteItem{ID: "l-1", MaterialID: "mat-1", Quantity: 4, Price: 100},
		quotes.QuoteItem{ID: "l-2", MaterialID: "mat-2", Quantity: 2, Price: 50},
	))
	svc := newTestService(fixture)

	order, err := svc.ApproveQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", order.QuoteID)
	assert.Equal(t, "Apex Fabrication", order.CustomerName)

	q, err := fixture.GetQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, quotes.StatusApproved, q.Status)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 6.0, inv.OnHand)
	assert.Equal(t, 4.0, inv.Allocated)

	inv, err = fixture.Level(context.Background(), "mat-2")
	require.NoError(t, err)
	assert.Equal(t, 3.0, inv.OnHand)
	assert.Equal(t, 2.0, inv.Allocated)
}

func TestApproveQuoteNotFound(t *testing.T) {
	svc := newTestService(newMockFixture())

	_, err := svc.ApproveQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, quotes.ErrNotFound)
}

func TestApproveQuoteTwice(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 10, 0)
	fixture.addQuote(draftQuote("q-1",
		quotes.QuoteItem{ID: "l-1", MaterialID: "mat-1", Quantity: 1, Price: 100},
	))
	svc := newTestService(fixture)

	_, err := svc.ApproveQuote(context.Background(), "q-1")
	require.NoError(t, err)

	_, err = svc.ApproveQuote(context.Background(), "q-1")
	assert.ErrorIs(t, err, quotes.ErrInvalidState)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, inv.Allocated, "second approval must not allocate again")
}

func TestApproveQuoteInsufficientStockRollsBack(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 10, 0)
	fixture.seedStock("mat-2", 1, 0)
	fixture.addQuote(draftQuote("q-1",
		quotes.QuoteItem{ID: "l-1", MaterialID: "mat-1", Quantity: 4, Price: 100},
		quotes.QuoteItem{ID: "l-2", MaterialID: "mat-2", Quantity: 3, Price: 50},
	))
	svc := newTestService(fixture)

	_, err := svc.ApproveQuote(context.Background(), "q-1")
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// Nothing moved: quote stays DRAFT, no order, first line untouched.
	q, err := fixture.GetQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, quotes.StatusDraft, q.Status)

	list, err := fixture.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, inv.OnHand)
	assert.Equal(t, 0.0, inv.Allocated)
}

func TestApproveQuoteMidAllocationRollsBack(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 5, 0)
	fixture.seedStock("mat-2", 5, 0)
	// Stock drains between the advisory check and the transaction:
	// the second line passes the pre-check at 5 on hand, then a
	// competing allocation takes 4 before the transaction runs.
	fixture.addQuote(draftQuote("q-1",
		quotes.QuoteItem{ID: "l-1", MaterialID: "mat-1", Quantity: 2, Price: 100},
		quotes.QuoteItem{ID: "l-2", MaterialID: "mat-2", Quantity: 5, Price: 50},
	))
	svc := newTestService(fixture)

	require.NoError(t, fixture.WithTx(context.Background(), func(ctx context.Context, tx TxRepository) error {
		_, err := inventory.Allocate(ctx, tx.Inventory(), "mat-2", 4)
		return err
	}))

	_, err := svc.ApproveQuote(context.Background(), "q-1")
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, inv.OnHand, "first line allocation must roll back with the failed second line")
	assert.Equal(t, 0.0, inv.Allocated)

	q, err := fixture.GetQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, quotes.StatusDraft, q.Status)
}

func TestConcurrentApprovalsSingleWinner(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 10, 0)
	fixture.addQuote(draftQuote("q-1",
		quotes.QuoteItem{ID: "l-1", MaterialID: "mat-1", Quantity: 2, Price: 100},
	))
	svc := newTestService(fixture)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApproveQuote(context.Background(), "q-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, quotes.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, succeeded)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, inv.Allocated, "exactly one approval may allocate")

	list, err := fixture.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestConcurrentApprovalsNeverOversell(t *testing.T) {
	fixture := newMockFixture()
	fixture.seedStock("mat-1", 10, 0)
	const attempts = 25
	for i := 0; i < attempts; i++ {
		id := fmt.Sprintf("q-%02d", i)
		fixture.addQuote(draftQuote(id,
			quotes.QuoteItem{ID: id + "-l1", MaterialID: "mat-1", Quantity: 1, Price: 100},
		))
	}
	svc := newTestService(fixture)

	ids := make([]string, 0, attempts)
	for id := range fixture.quotes {
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(quoteID string) {
			defer wg.Done()
			_, err := svc.ApproveQuote(context.Background(), quoteID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, succeeded)

	inv, err := fixture.Level(context.Background(), "mat-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.OnHand)
	assert.Equal(t, 10.0, inv.Allocated)
}
