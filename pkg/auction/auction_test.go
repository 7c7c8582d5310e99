package auction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemaining(t *testing.T) {
	assert.Equal(t, int64(10), Remaining(110, 100))
	assert.Equal(t, int64(0), Remaining(100, 100))
	assert.Equal(t, int64(0), Remaining(90, 100))
}

func TestInfoRoundTrip(t *testing.T) {
	i := Info{InitialValue: 1000000, Step: 10000, StartHeight: 500, EndHeight: 1220}

	assert.Equal(t, "1000000,10000,500,1220", i.String())

	got, err := ParseInfo(i.String())
	require.NoError(t, err)
	assert.Equal(t, i, got)

	_, err = ParseInfo("1,2,3")
	assert.Error(t, err)

	_, err = ParseInfo("1,2,x,4")
	assert.Error(t, err)
}

func boxes(field string, vals ...int64) []*Box {
	bs := make([]*Box, 0, len(vals))
	for i, v := range vals {
		b := &Box{ID: string(rune('a' + i))}
		switch field {
		case "remaining":
			b.RemainingBlocks = v
		case "value":
			b.Value = v
		case "creation":
			b.CreationHeight = v
		}
		bs = append(bs, b)
	}
	return bs
}

func remaining(bs []*Box) []int64 {
	out := []int64{}
	for _, b := range bs {
		out = append(out, b.RemainingBlocks)
	}
	return out
}

func values(bs []*Box) []int64 {
	out := []int64{}
	for _, b := range bs {
		out = append(out, b.Value)
	}
	return out
}

func ids(bs []*Box) []string {
	out := []string{}
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestSort(t *testing.T) {
	bs := boxes("remaining", 10, 2, 7)
	Sort(bs, SortLowestRemaining)
	assert.Equal(t, []int64{2, 7, 10}, remaining(bs))

	Sort(bs, SortHighestRemaining)
	assert.Equal(t, []int64{10, 7, 2}, remaining(bs))

	bs = boxes("value", 50, 10, 30)
	Sort(bs, SortHighestPrice)
	assert.Equal(t, []int64{50, 30, 10}, values(bs))

	Sort(bs, SortLowestPrice)
	assert.Equal(t, []int64{10, 30, 50}, values(bs))

	bs = boxes("creation", 100, 300, 200)
	Sort(bs, SortLatest)
	assert.Equal(t, []string{"b", "c", "a"}, ids(bs))
}

func TestSortStable(t *testing.T) {
	bs := boxes("value", 5, 5, 1, 5)
	Sort(bs, SortHighestPrice)
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids(bs))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("2")
	require.NoError(t, err)
	assert.Equal(t, SortHighestPrice, k)
	assert.Equal(t, "Highest price", k.String())

	_, err = ParseSortKey("9")
	assert.Error(t, err)

	_, err = ParseSortKey("x")
	assert.Error(t, err)
}
