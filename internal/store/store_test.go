package store

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playcv/cartd/internal/domain"
)

type failingStorage struct {
	err error
}

func (f *failingStorage) Get(context.Context, string) (*domain.Cart, error) { return nil, f.err }
func (f *failingStorage) Set(context.Context, string, *domain.Cart) error  { return f.err }
func (f *failingStorage) Delete(context.Context, string) error             { return f.err }

func newTestStore(t *testing.T, storage Storage) *Store {
	t.Helper()
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return NewStore("user-1", storage, zap.NewNop())
}

func TestAddItem_RequiresProductRef(t *testing.T) {
	s := newTestStore(t, nil)

	err := s.AddItem(context.Background(), domain.LineItem{Title: "no ref"})

	assert.ErrorIs(t, err, ErrEmptyProductRef)
	assert.Empty(t, s.Items())
}

func TestAddItem_AssignsTransientID(t *testing.T) {
	s := newTestStore(t, nil)

	err := s.AddItem(context.Background(), domain.LineItem{ProductRef: "v1"})
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.AddItem(context.Background(), domain.LineItem{ID: "a", ProductRef: "v1"}))
	require.NoError(t, s.AddItem(context.Background(), domain.LineItem{ID: "b", ProductRef: "v2"}))

	s.RemoveItem(context.Background(), "a")
	after := s.Items()

	// Second removal of the same id is a no-op, not an error.
	s.RemoveItem(context.Background(), "a")

	assert.Equal(t, after, s.Items())
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "b", s.Items()[0].ID)
}

func TestClear_DeletesStorageEntry(t *testing.T) {
	storage := NewMemoryStorage()
	s := newTestStore(t, storage)
	require.NoError(t, s.AddItem(context.Background(), domain.LineItem{ProductRef: "v1"}))

	s.Clear(context.Background())

	assert.Empty(t, s.Items())
	_, err := storage.Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestMutations_SurviveStorageFailure(t *testing.T) {
	s := newTestStore(t, &failingStorage{err: errors.New("disk on fire")})

	require.NoError(t, s.AddItem(context.Background(), domain.LineItem{ProductRef: "v1"}))
	assert.Len(t, s.Items(), 1)

	s.SetAll(context.Background(), []domain.LineItem{
		{ID: "x", ProductRef: "v2", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
	})
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, "x", s.Items()[0].ID)

	s.Clear(context.Background())
	assert.Empty(t, s.Items())
}

func TestHydrate_LoadsPersistedSnapshot(t *testing.T) {
	storage := NewMemoryStorage()

	first := NewStore("user-1", storage, zap.NewNop())
	require.NoError(t, first.AddItem(context.Background(), domain.LineItem{ID: "a", ProductRef: "v1"}))

	second := NewStore("user-1", storage, zap.NewNop())
	second.Hydrate(context.Background())

	require.Len(t, second.Items(), 1)
	assert.Equal(t, "a", second.Items()[0].ID)
}

func TestHydrate_MissingSnapshotMeansEmptyCart(t *testing.T) {
	s := newTestStore(t, nil)
	s.Hydrate(context.Background())
	assert.Empty(t, s.Items())
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, nil)
	require.NoError(t, s.AddItem(context.Background(), domain.LineItem{ID: "a", ProductRef: "v1"}))

	items := s.Items()
	items[0].ID = "mutated"

	assert.Equal(t, "a", s.Items()[0].ID)
}
