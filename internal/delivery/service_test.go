package delivery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudforge-erp/cloudforge-erp/internal/ar"
	"github.com/cloudforge-erp/cloudforge-erp/internal/inventory"
)

type mockRepository struct {
	mu          sync.Mutex
	orders      map[string]OrderInfo
	shipments   map[string][]Shipment
	invoices    map[string]ar.Invoice
	inventories map[string]inventory.Inventory
	nextNumber  int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders:      make(map[string]OrderInfo),
		shipments:   make(map[string][]Shipment),
		invoices:    make(map[string]ar.Invoice),
		inventories: make(map[string]inventory.Inventory),
	}
}

func (m *mockRepository) addOrder(info OrderInfo) {
	m.orders[info.ID] = info
}

func (m *mockRepository) seedStock(materialID string, onHand, allocated float64) {
	m.inventories[materialID] = inventory.Inventory{MaterialID: materialID, OnHand: onHand, Allocated: allocated}
}

func (m *mockRepository) GetOrderForShipment(ctx context.Context, orderID string) (*OrderInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &info, nil
}

func (m *mockRepository) ListForOrder(ctx context.Context, orderID string) ([]Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Shipment(nil), m.shipments[orderID]...), nil
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &mockTxRepo{
		orders:      m.orders,
		shipments:   make(map[string][]Shipment, len(m.shipments)),
		invoices:    make(map[string]ar.Invoice, len(m.invoices)),
		inventories: make(map[string]inventory.Inventory, len(m.inventories)),
		nextNumber:  m.nextNumber,
	}
	for k, v := range m.shipments {
		staged.shipments[k] = append([]Shipment(nil), v...)
	}
	for k, v := range m.invoices {
		staged.invoices[k] = v
	}
	for k, v := range m.inventories {
		staged.inventories[k] = v
	}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	m.shipments = staged.shipments
	m.invoices = staged.invoices
	m.inventories = staged.inventories
	m.nextNumber = staged.nextNumber
	return nil
}

type mockTxRepo struct {
	orders      map[string]OrderInfo
	shipments   map[string][]Shipment
	invoices    map[string]ar.Invoice
	inventories map[string]inventory.Inventory
	nextNumber  int
}

func (t *mockTxRepo) LockOrder(ctx context.Context, orderID string) error {
	if _, ok := t.orders[orderID]; !ok {
		return ErrOrderNotFound
	}
	return nil
}

func (t *mockTxRepo) InsertShipment(ctx context.Context, s Shipment) error {
	t.shipments[s.SalesOrderID] = append(t.shipments[s.SalesOrderID], s)
	return nil
}

func (t *mockTxRepo) Inventory() inventory.TxRepository {
	return &mockInventoryTx{inventories: t.inventories}
}

func (t *mockTxRepo) Invoices() ar.InvoiceTxRepository {
	return &mockInvoiceTx{repo: t}
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

type mockInvoiceTx struct {
	repo *mockTxRepo
}

func (t *mockInvoiceTx) ExistsForOrder(ctx context.Context, salesOrderID string) (bool, error) {
	for _, inv := range t.repo.invoices {
		if inv.SalesOrderID == salesOrderID {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockInvoiceTx) NextNumber(ctx context.Context) (string, error) {
	t.repo.nextNumber++
	return fmt.Sprintf("INV-%06d", t.repo.nextNumber), nil
}

func (t *mockInvoiceTx) InsertInvoice(ctx context.Context, inv ar.Invoice) error {
	t.repo.invoices[inv.ID] = inv
	return nil
}

func TestCreateShipment(t *testing.T) {
	repo := newMockRepository()
	repo.seedStock("mat-1", 6, 4)
	repo.seedStock("mat-2", 3, 2)
	repo.addOrder(OrderInfo{
		ID:           "so-1",
		CustomerName: "Apex Fabrication",
		Total:        500,
		Items: []OrderLine{
			{MaterialID: "mat-1", Quantity: 4},
			{MaterialID: "mat-2", Quantity: 2},
		},
	})
	svc := NewService(repo)

	eta := time.Now().UTC().Add(72 * time.Hour)
	result, err := svc.CreateShipment(context.Background(), "so-1", CreateShipmentRequest{
		Carrier:           "XPO Logistics",
		Tracking:          "1Z999AA10123456784",
		EstimatedDelivery: &eta,
	})
	require.NoError(t, err)

	assert.Equal(t, "so-1", result.Shipment.SalesOrderID)
	assert.Equal(t, "XPO Logistics", result.Shipment.Carrier)

	// Allocations released, onHand untouched.
	inv := repo.inventories["mat-1"]
	assert.Equal(t, 6.0, inv.OnHand)
	assert.Equal(t, 0.0, inv.Allocated)
	inv = repo.inventories["mat-2"]
	assert.Equal(t, 3.0, inv.OnHand)
	assert.Equal(t, 0.0, inv.Allocated)

	// Exactly one invoice, issued with 30 day terms at the quote total.
	invoice := result.Invoice
	assert.Equal(t, "INV-000001", invoice.Number)
	assert.Equal(t, ar.StatusIssued, invoice.Status)
	assert.Equal(t, 500.0, invoice.Total)
	assert.Equal(t, 500.0, invoice.Subtotal)
	assert.Equal(t, 0.0, invoice.TaxRate)
	assert.Equal(t, 0.0, invoice.Discount)
	expectedDue := invoice.CreatedAt.AddDate(0, 0, 30)
	assert.WithinDuration(t, expectedDue, invoice.DueDate, time.Second)
	assert.Len(t, repo.invoices, 1)
}

func TestCreateShipmentUnknownOrder(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateShipment(context.Background(), "missing", CreateShipmentRequest{
		Carrier:  "XPO Logistics",
		Tracking: "1Z999",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateShipmentTwice(t *testing.T) {
	repo := newMockRepository()
	repo.seedStock("mat-1", 6, 4)
	repo.addOrder(OrderInfo{
		ID:           "so-1",
		CustomerName: "Apex Fabrication",
		Total:        400,
		Items:        []OrderLine{{MaterialID: "mat-1", Quantity: 4}},
	})
	svc := NewService(repo)

	_, err := svc.CreateShipment(context.Background(), "so-1", CreateShipmentRequest{
		Carrier:  "XPO Logistics",
		Tracking: "first",
	})
	require.NoError(t, err)

	_, err = svc.CreateShipment(context.Background(), "so-1", CreateShipmentRequest{
		Carrier:  "XPO Logistics",
		Tracking: "second",
	})
	assert.ErrorIs(t, err, ar.ErrConflict)

	// First shipment stands, nothing moved twice.
	assert.Len(t, repo.shipments["so-1"], 1)
	assert.Len(t, repo.invoices, 1)
	inv := repo.inventories["mat-1"]
	assert.Equal(t, 6.0, inv.OnHand)
	assert.Equal(t, 0.0, inv.Allocated)
}

func TestCreateShipmentUnderflowRollsBack(t *testing.T) {
	repo := newMockRepository()
	// Allocation is short: only 2 allocated for a 4 unit line.
	repo.seedStock("mat-1", 6, 2)
	repo.addOrder(OrderInfo{
		ID:           "so-1",
		CustomerName: "Apex Fabrication",
		Total:        400,
		Items:        []OrderLine{{MaterialID: "mat-1", Quantity: 4}},
	})
	svc := NewService(repo)

	_, err := svc.CreateShipment(context.Background(), "so-1", CreateShipmentRequest{
		Carrier:  "XPO Logistics",
		Tracking: "1Z999",
	})
	require.ErrorIs(t, err, inventory.ErrAllocationUnderflow)

	assert.Empty(t, repo.shipments["so-1"])
	assert.Empty(t, repo.invoices)
	inv := repo.inventories["mat-1"]
	assert.Equal(t, 2.0, inv.Allocated, "failed shipment must not change counters")
}

func TestListForOrder(t *testing.T) {
	repo := newMockRepository()
	repo.seedStock("mat-1", 6, 4)
	repo.addOrder(OrderInfo{
		ID:           "so-1",
		CustomerName: "Apex Fabrication",
		Total:        400,
		Items:        []OrderLine{{MaterialID: "mat-1", Quantity: 4}},
	})
	svc := NewService(repo)

	_, err := svc.CreateShipment(context.Background(), "so-1", CreateShipmentRequest{
		Carrier:  "XPO Logistics",
		Tracking: "1Z999",
	})
	require.NoError(t, err)

	shipments, err := svc.ListForOrder(context.Background(), "so-1")
	require.NoError(t, err)
	require.Len(t, shipments, 1)
	assert.Equal(t, "1Z999", shipments[0].Tracking)

	_, err = svc.ListForOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
