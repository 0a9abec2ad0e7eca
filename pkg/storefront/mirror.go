package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/coffeemania/pkg/cartclient"
)

// MirrorEntry is one product in the local cart copy.
type MirrorEntry struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

func (e MirrorEntry) Total() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

type MirrorStore interface {
	Load(ctx context.Context) ([]MirrorEntry, error)
	Save(ctx context.Context, entries []MirrorEntry) error
}

// Mirror is the client-side cart. It is authoritative for guests and a
// fallback copy of the server cart otherwise. Every change is written
// through to the store.
type Mirror struct {
	mu      sync.Mutex
	store   MirrorStore
	entries []MirrorEntry
}

func NewMirror(ctx context.Context, store MirrorStore) (*Mirror, error) {
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mirror: %w", err)
	}
	return &Mirror{store: store, entries: entries}, nil
}

func (m *Mirror) Entries() []MirrorEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MirrorEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Mirror) Quantity(productID uint) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(productID); i >= 0 {
		return m.entries[i].Quantity, true
	}
	return 0, false
}

// Replace overwrites the mirror with the server view.
func (m *Mirror) Replace(ctx context.Context, cart *cartclient.Cart) error {
	next := make([]MirrorEntry, 0, len(cart.Items))
	for _, it := range cart.Items {
		next = append(next, MirrorEntry{
			ID:       it.ProductID,
			Name:     it.ProductName,
			Price:    it.ProductPrice,
			Image:    it.ProductImageURL,
			Quantity: it.Quantity,
		})
	}
	return m.commit(ctx, func([]MirrorEntry) []MirrorEntry { return next })
}

// Add increments an existing entry or appends a new one.
func (m *Mirror) Add(ctx context.Context, e MirrorEntry, qty int) error {
	return m.commit(ctx, func(cur []MirrorEntry) []MirrorEntry {
		if i := indexOf(cur, e.ID); i >= 0 {
			cur[i].Quantity += qty
			return cur
		}
		e.Quantity = qty
		return append(cur, e)
	})
}

// Set overwrites the quantity; qty <= 0 drops the entry.
func (m *Mirror) Set(ctx context.Context, productID uint, qty int) error {
	return m.commit(ctx, func(cur []MirrorEntry) []MirrorEntry {
		i := indexOf(cur, productID)
		if i < 0 {
			return cur
		}
		if qty <= 0 {
			return append(cur[:i], cur[i+1:]...)
		}
		cur[i].Quantity = qty
		return cur
	})
}

// Change applies delta to an entry, dropping it when the result is <= 0.
func (m *Mirror) Change(ctx context.Context, productID uint, delta int) error {
	cur, ok := m.Quantity(productID)
	if !ok {
		return nil
	}
	return m.Set(ctx, productID, cur+delta)
}

func (m *Mirror) Remove(ctx context.Context, productID uint) error {
	return m.Set(ctx, productID, 0)
}

func (m *Mirror) Clear(ctx context.Context) error {
	return m.commit(ctx, func([]MirrorEntry) []MirrorEntry { return nil })
}

// Totals returns the amount and item count of the mirror.
func (m *Mirror) Totals() (decimal.Decimal, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount, items := decimal.Zero, 0
	for _, e := range m.entries {
		amount = amount.Add(e.Total())
		items += e.Quantity
	}
	return amount, items
}

func (m *Mirror) commit(ctx context.Context, fn func([]MirrorEntry) []MirrorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := make([]MirrorEntry, len(m.entries))
	copy(cur, m.entries)
	next := fn(cur)

	if err := m.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save mirror: %w", err)
	}
	m.entries = next
	return nil
}

func (m *Mirror) index(productID uint) int {
	return indexOf(m.entries, productID)
}

func indexOf(entries []MirrorEntry, productID uint) int {
	for i := range entries {
		if entries[i].ID == productID {
			return i
		}
	}
	return -1
}
