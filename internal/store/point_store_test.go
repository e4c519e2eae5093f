package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/ecoleta/internal/domain"
)

func TestPointStoreCreate(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	point, err := points.Create(ctx, newPoint("Mercado Verde", "SP", "São Paulo"), []int64{1, 2})
	require.NoError(t, err)
	assert.NotZero(t, point.ID)
	assert.Equal(t, "Mercado Verde", point.Name)
	assert.Equal(t, "abc123-mercado.jpg", point.Image)
	assert.Equal(t, "SP", point.UF)
	assert.InDelta(t, -23.55, point.Latitude, 1e-9)
	assert.InDelta(t, -46.63, point.Longitude, 1e-9)
	assert.False(t, point.CreatedAt.IsZero())

	ids, err := items.ListIDsByPointID(ctx, point.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestPointStoreCreate_CollapsesDuplicateItems(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	point, err := points.Create(ctx, newPoint("Mercado", "SP", "Santos"), []int64{3, 3, 5, 3})
	require.NoError(t, err)

	ids, err := items.ListIDsByPointID(ctx, point.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)
}

func TestPointStoreCreate_UnknownItemRollsBack(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	ctx := context.Background()

	_, err := points.Create(ctx, newPoint("Fantasma", "RJ", "Niterói"), []int64{1, 999})
	require.Error(t, err)

	// Neither the point nor its first association survives.
	list, err := points.List(ctx, domain.PointFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	var links int
	require.NoError(t, d.Get(&links, "SELECT COUNT(*) FROM point_items"))
	assert.Zero(t, links)
}

func TestPointStoreGetByID(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	ctx := context.Background()

	created, err := points.Create(ctx, newPoint("Ecoponto", "MG", "Belo Horizonte"), []int64{1})
	require.NoError(t, err)

	got, err := points.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Ecoponto", got.Name)
	assert.Equal(t, "Belo Horizonte", got.City)
}

func TestPointStoreGetByID_NotFound(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)

	got, err := points.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPointStoreList_Filters(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	ctx := context.Background()

	a, err := points.Create(ctx, newPoint("A", "SP", "São Paulo"), []int64{1, 2})
	require.NoError(t, err)
	b, err := points.Create(ctx, newPoint("B", "SP", "São Paulo"), []int64{3})
	require.NoError(t, err)
	c, err := points.Create(ctx, newPoint("C", "SP", "Campinas"), []int64{1})
	require.NoError(t, err)
	e, err := points.Create(ctx, newPoint("E", "RJ", "Rio de Janeiro"), []int64{2, 3})
	require.NoError(t, err)

	ids := func(list []*domain.Point) []int64 {
		out := make([]int64, 0, len(list))
		for _, p := range list {
			out = append(out, p.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.PointFilter
		want   []int64
	}{
		{name: "no filter", filter: domain.PointFilter{}, want: []int64{a.ID, b.ID, c.ID, e.ID}},
		{name: "uf only", filter: domain.PointFilter{UF: "SP"}, want: []int64{a.ID, b.ID, c.ID}},
		{name: "uf and city", filter: domain.PointFilter{UF: "SP", City: "São Paulo"}, want: []int64{a.ID, b.ID}},
		{name: "single item", filter: domain.PointFilter{ItemIDs: []int64{1}}, want: []int64{a.ID, c.ID}},
		{name: "any of items is distinct", filter: domain.PointFilter{ItemIDs: []int64{2, 3}}, want: []int64{a.ID, b.ID, e.ID}},
		{name: "all filters", filter: domain.PointFilter{UF: "SP", City: "São Paulo", ItemIDs: []int64{3}}, want: []int64{b.ID}},
		{name: "no match", filter: domain.PointFilter{UF: "AM"}, want: []int64{}},
		{name: "unknown item", filter: domain.PointFilter{ItemIDs: []int64{42}}, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := points.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(list))
		})
	}
}

func TestPointStoreDelete(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)
	items := NewItemStore(d)
	ctx := context.Background()

	point, err := points.Create(ctx, newPoint("Temporário", "PR", "Curitiba"), []int64{1, 2})
	require.NoError(t, err)

	require.NoError(t, points.Delete(ctx, point.ID))

	got, err := points.GetByID(ctx, point.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Associations cascade with the point.
	ids, err := items.ListIDsByPointID(ctx, point.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPointStoreDelete_NotFound(t *testing.T) {
	d := openTestDB(t)
	points := NewPointStore(d)

	err := points.Delete(context.Background(), 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
