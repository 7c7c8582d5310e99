package coin

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

// Selection is a set of inputs covering target+fee and what is left over.
type Selection struct {
	Chosen       []tx.Coin
	ChangeValue  int64
	ChangeAssets []tx.Asset
}

// Total is the summed value of the chosen inputs.
func (s *Selection) Total() int64 {
	var v int64
	for _, c := range s.Chosen {
		v += c.Value
	}
	return v
}

func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.Chosen))
	for _, c := range s.Chosen {
		ids = append(ids, c.ID)
	}
	return ids
}

// NewSelection computes change for an already chosen input set.
func NewSelection(chosen []tx.Coin, target, fee int64) (*Selection, error) {
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	s := &Selection{Chosen: chosen}

	total := s.Total()
	if total < target+fee {
		return nil, errors.Wrapf(ErrInsufficientFunds, "have %d, need %d", total, target+fee)
	}

	s.ChangeValue = total - target - fee
	s.ChangeAssets = AggregateAssets(chosen)

	return s, nil
}

// Greedy picks the largest coins first and stops at the first coin that
// brings the total to target+fee. Nothing is returned unless the whole
// amount can be covered.
func Greedy(coins []tx.Coin, target, fee int64) (*Selection, error) {
	if target <= 0 {
		return nil, ErrInvalidTarget
	}

	sorted := make([]tx.Coin, len(coins))
	copy(sorted, coins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	needed := target + fee
	var chosen []tx.Coin

	for _, c := range sorted {
		chosen = append(chosen, c)
		needed -= c.Value
		if needed <= 0 {
			return NewSelection(chosen, target, fee)
		}
	}

	return nil, errors.Wrapf(ErrInsufficientFunds, "short by %d", needed)
}

// AggregateAssets sums asset amounts across coins, grouped by asset id in
// order of first appearance.
func AggregateAssets(coins []tx.Coin) []tx.Asset {
	idx := map[string]int{}
	out := []tx.Asset{}

	for _, c := range coins {
		for _, a := range c.Assets {
			if i, ok := idx[a.TokenID]; ok {
				out[i].Amount += a.Amount
				continue
			}
			idx[a.TokenID] = len(out)
			out = append(out, a)
		}
	}

	return out
}
