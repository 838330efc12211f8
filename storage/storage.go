package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"paydash.app/cloud/models"
)

// Storage is the local read-model store: orders and payments recorded from
// webhooks, a catalog snapshot for when the provider is unreachable, and
// the set of webhook event ids already applied. Lookups that find nothing
// return (nil, nil).
type Storage interface {
	SaveOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	FindOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)

	SavePayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error)

	// MarkEventProcessed records a webhook event id and reports whether it
	// had been recorded before.
	MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error)
	// ForgetEvent removes a recorded event id so the provider's retry of a
	// failed delivery is not mistaken for a duplicate.
	ForgetEvent(ctx context.Context, eventID string) error

	ReplaceCatalog(ctx context.Context, items []models.CatalogItem) error
	ListCatalog(ctx context.Context) ([]models.CatalogItem, error)

	Close() error
}

// MemoryStorage backs tests and local experiments.
type MemoryStorage struct {
	mu       sync.RWMutex
	Orders   map[string]models.Order
	Payments map[string]models.Payment // keyed by stripe payment id
	Events   map[string]string         // event id -> event type
	Catalog  []models.CatalogItem
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Orders:   make(map[string]models.Order),
		Payments: make(map[string]models.Payment),
		Events:   make(map[string]string),
	}
}

func (m *MemoryStorage) SaveOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders[order.ID] = *order
	return nil
}

func (m *MemoryStorage) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, exists := m.Orders[id]
	if !exists {
		return nil, nil
	}
	return &order, nil
}

func (m *MemoryStorage) FindOrderBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, order := range m.Orders {
		if order.StripeSessionID == sessionID {
			orderCopy := order
			return &orderCopy, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) ListOrders(ctx context.Context) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []*models.Order
	for _, order := range m.Orders {
		orderCopy := order
		orders = append(orders, &orderCopy)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m *MemoryStorage) SavePayment(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Payments[payment.StripePaymentID] = *payment
	return nil
}

func (m *MemoryStorage) ListPaymentsSince(ctx context.Context, since time.Time) ([]models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []models.Payment
	for _, payment := range m.Payments {
		if payment.CreatedAt.Before(since) {
			continue
		}
		payments = append(payments, payment)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

func (m *MemoryStorage) MarkEventProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.Events[eventID]; seen {
		return true, nil
	}
	m.Events[eventID] = eventType
	return false, nil
}

func (m *MemoryStorage) ForgetEvent(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Events, eventID)
	return nil
}

func (m *MemoryStorage) ReplaceCatalog(ctx context.Context, items []models.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Catalog = append([]models.CatalogItem(nil), items...)
	return nil
}

func (m *MemoryStorage) ListCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CatalogItem(nil), m.Catalog...), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
