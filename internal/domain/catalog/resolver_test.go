package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu    sync.Mutex
	items map[string]Item
	calls map[string]int
	err   error
}

func newMockStore(items ...Item) *mockStore {
	m := &mockStore{items: make(map[string]Item), calls: make(map[string]int)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockStore) GetItem(_ context.Context, _, itemID string) (*Item, error) {
	m.mu.Lock()
	m.calls[itemID]++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	it, ok := m.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (m *mockStore) ListActive(_ context.Context, _ string) ([]Item, error) {
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out, nil
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestResolver_PricesLinesInRequestOrder(t *testing.T) {
	store := newMockStore(
		Item{ID: "dal", Name: "Dal Makhani", Price: price("250"), Active: true},
		Item{ID: "naan", Name: "Butter Naan", Price: price("60"), Active: true},
	)
	r := NewResolver(store)

	lines, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "naan", Quantity: 4},
		{ItemID: "dal", Quantity: 2},
	}, 20)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "naan", lines[0].ItemID)
	assert.True(t, price("240").Equal(lines[0].LineTotal), "got %s", lines[0].LineTotal)
	assert.Equal(t, "dal", lines[1].ItemID)
	assert.True(t, price("500").Equal(lines[1].LineTotal), "got %s", lines[1].LineTotal)
}

func TestResolver_DedupesLookups(t *testing.T) {
	store := newMockStore(
		Item{ID: "naan", Name: "Butter Naan", Price: price("60"), Active: true},
	)
	r := NewResolver(store)

	lines, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "naan", Quantity: 1},
		{ItemID: "naan", Quantity: 3},
	}, 20)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 1, store.calls["naan"])
	assert.Equal(t, 3, lines[1].Quantity)
}

func TestResolver_NotFoundFailsWholeCart(t *testing.T) {
	store := newMockStore(
		Item{ID: "naan", Name: "Butter Naan", Price: price("60"), Active: true},
	)
	r := NewResolver(store)

	_, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "naan", Quantity: 1},
		{ItemID: "ghost", Quantity: 1},
	}, 20)

	var notFound *ItemNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.ItemID)
}

func TestResolver_InactiveItemRejected(t *testing.T) {
	store := newMockStore(
		Item{ID: "seasonal", Name: "Seasonal Special", Price: price("400"), Active: false},
	)
	r := NewResolver(store)

	_, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "seasonal", Quantity: 1},
	}, 20)

	var inactive *ItemInactiveError
	require.ErrorAs(t, err, &inactive)
	assert.Equal(t, "seasonal", inactive.ItemID)
}

func TestResolver_NonPositiveQuantityRejected(t *testing.T) {
	store := newMockStore(
		Item{ID: "naan", Name: "Butter Naan", Price: price("60"), Active: true},
	)
	r := NewResolver(store)

	for _, qty := range []int{0, -3} {
		_, err := r.Resolve(context.Background(), "r1", []RequestItem{
			{ItemID: "naan", Quantity: qty},
		}, 20)

		var invalid *InvalidQuantityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, qty, invalid.Quantity)
	}
}

func TestResolver_QuantityClampedToCap(t *testing.T) {
	store := newMockStore(
		Item{ID: "naan", Name: "Butter Naan", Price: price("60"), Active: true},
	)
	r := NewResolver(store)

	lines, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "naan", Quantity: 50},
	}, 20)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, 20, lines[0].Quantity)
	assert.True(t, price("1200").Equal(lines[0].LineTotal), "got %s", lines[0].LineTotal)
}

func TestResolver_StoreErrorWrapped(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection reset")
	r := NewResolver(store)

	_, err := r.Resolve(context.Background(), "r1", []RequestItem{
		{ItemID: "naan", Quantity: 1},
	}, 20)
	require.Error(t, err)

	var notFound *ItemNotFoundError
	assert.False(t, errors.As(err, &notFound))
}
