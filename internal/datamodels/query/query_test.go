package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAndSkip(t *testing.T) {
	o := Options{}.Normalize(4)
	assert.Equal(t, 1, o.Page)
	assert.Equal(t, 4, o.Limit)
	assert.Equal(t, 0, o.Skip())

	o = Options{Page: 3, Limit: 10}.Normalize(4)
	assert.Equal(t, 20, o.Skip())

	o = Options{Page: -2, Limit: -1}.Normalize(3)
	assert.Equal(t, 1, o.Page)
	assert.Equal(t, 3, o.Limit)

	o = Options{Page: 1, Limit: 5000}.Normalize(4)
	assert.Equal(t, MaxLimit, o.Limit)
}

func TestSkipHugePage(t *testing.T) {
	o := Options{Page: math.MaxInt, Limit: 4}.Normalize(4)
	assert.Equal(t, math.MaxInt32, o.Skip())

	o = Options{Page: math.MaxInt / 4, Limit: 4}.Normalize(4)
	assert.True(t, o.Skip() > 0)
}

func TestSortFields(t *testing.T) {
	allowed := Fields("price", "name", "createdAt")
	got := Options{Sort: "price,-name,password, -createdAt"}.SortFields(allowed)

	assert.Equal(t, []SortField{
		{Field: "price"},
		{Field: "name", Desc: true},
		{Field: "createdAt", Desc: true},
	}, got)
}

func TestSelectFields(t *testing.T) {
	allowed := Fields("name", "price")
	assert.Equal(t, []string{"name", "price"}, Options{Select: "name,price,secret"}.SelectFields(allowed))
	assert.Empty(t, Options{}.SelectFields(allowed))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 4))
	assert.Equal(t, 1, TotalPages(4, 4))
	assert.Equal(t, 2, TotalPages(5, 4))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestIDs(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 24)
	assert.True(t, ValidID(id))
	assert.False(t, ValidID("not-an-id"))
	assert.False(t, ValidID(""))
}
