package auction

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

type SortKey int

const (
	SortLowestRemaining SortKey = iota
	SortHighestRemaining
	SortHighestPrice
	SortLowestPrice
	SortLatest
)

var sortKeyNames = map[SortKey]string{
	SortLowestRemaining:  "Lowest remaining time",
	SortHighestRemaining: "Highest remaining time",
	SortHighestPrice:     "Highest price",
	SortLowestPrice:      "Lowest price",
	SortLatest:           "Latest bids",
}

func (k SortKey) String() string {
	if n, ok := sortKeyNames[k]; ok {
		return n
	}
	return "SortKey(" + strconv.Itoa(int(k)) + ")"
}

func (k SortKey) Valid() bool {
	_, ok := sortKeyNames[k]
	return ok
}

func ParseSortKey(s string) (SortKey, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrap(err, "parsing sort key")
	}
	k := SortKey(v)
	if !k.Valid() {
		return 0, errors.Errorf("unknown sort key %d", v)
	}
	return k, nil
}

// Less returns the comparator for the key.
func (k SortKey) Less() func(a, b *Box) bool {
	switch k {
	case SortHighestRemaining:
		return func(a, b *Box) bool { return a.RemainingBlocks > b.RemainingBlocks }
	case SortHighestPrice:
		return func(a, b *Box) bool { return a.Value > b.Value }
	case SortLowestPrice:
		return func(a, b *Box) bool { return a.Value < b.Value }
	case SortLatest:
		return func(a, b *Box) bool { return a.CreationHeight > b.CreationHeight }
	default:
		return func(a, b *Box) bool { return a.RemainingBlocks < b.RemainingBlocks }
	}
}

// Sort orders boxes in place by key. Equal boxes keep their input order.
func Sort(boxes []*Box, k SortKey) {
	less := k.Less()
	sort.SliceStable(boxes, func(i, j int) bool {
		return less(boxes[i], boxes[j])
	})
}
