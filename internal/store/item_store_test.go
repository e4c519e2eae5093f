package store

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/ecoleta/internal/db"
	"github.com/vbonduro/ecoleta/internal/domain"
)

// openTestDB returns a migrated in-memory database. The six seeded items have
// ids 1 through 6.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func newPoint(name, uf, city string) *domain.Point {
	return &domain.Point{
		Image:     "abc123-mercado.jpg",
		Name:      name,
		Email:     "contato@example.com",
		Phone:     "11999999999",
		Latitude:  -23.55,
		Longitude: -46.63,
		City:      city,
		UF:        uf,
	}
}

func TestItemStoreList(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)

	list, err := items.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 6)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, "Lâmpadas", list[0].Title)
	assert.Equal(t, "lampadas.svg", list[0].Image)
	assert.Equal(t, "Óleo de Cozinha", list[5].Title)
}

func TestItemStoreListByPointID(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	points := NewPointStore(d)
	ctx := context.Background()

	point, err := points.Create(ctx, newPoint("Mercado", "SP", "São Paulo"), []int64{4, 2})
	require.NoError(t, err)

	list, err := items.ListByPointID(ctx, point.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Ordered by item id, not insertion order.
	assert.Equal(t, "Pilhas e Baterias", list[0].Title)
	assert.Equal(t, "Resíduos Eletrônicos", list[1].Title)
}

func TestItemStoreListByPointID_Unknown(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)

	list, err := items.ListByPointID(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestItemStoreListIDsByPointID(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	points := NewPointStore(d)
	ctx := context.Background()

	point, err := points.Create(ctx, newPoint("Mercado", "SP", "São Paulo"), []int64{6, 1, 3})
	require.NoError(t, err)

	ids, err := items.ListIDsByPointID(ctx, point.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 6}, ids)
}

func TestItemStoreCountExisting(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	ctx := context.Background()

	count, err := items.CountExisting(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = items.CountExisting(ctx, []int64{1, 42})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = items.CountExisting(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
