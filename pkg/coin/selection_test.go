package coin

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/auctionhouse/pkg/tx"
)

func coins(vals ...int64) []tx.Coin {
	cs := make([]tx.Coin, 0, len(vals))
	for i, v := range vals {
		cs = append(cs, tx.Coin{ID: string(rune('a' + i)), Value: v})
	}
	return cs
}

func TestGreedy(t *testing.T) {
	tests := []struct {
		name       string
		coins      []tx.Coin
		target     int64
		fee        int64
		wantIDs    []string
		wantChange int64
		wantErr    error
	}{
		{
			name:       "single coin",
			coins:      coins(120),
			target:     115,
			fee:        1,
			wantIDs:    []string{"a"},
			wantChange: 4,
		},
		{
			name:       "largest first",
			coins:      coins(10, 50, 30),
			target:     60,
			fee:        5,
			wantIDs:    []string{"b", "c"},
			wantChange: 15,
		},
		{
			name:       "stops at first covering coin",
			coins:      coins(100, 100, 100),
			target:     99,
			fee:        1,
			wantIDs:    []string{"a"},
			wantChange: 0,
		},
		{
			name:    "insufficient",
			coins:   coins(10, 20),
			target:  30,
			fee:     1,
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "empty wallet",
			target:  1,
			fee:     1,
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "zero target",
			coins:   coins(10),
			target:  0,
			wantErr: ErrInvalidTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Greedy(tt.coins, tt.target, tt.fee)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, sel)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, sel.IDs())
			assert.Equal(t, tt.wantChange, sel.ChangeValue)
		})
	}
}

func TestGreedyRandom(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := r.Intn(8)
		cs := make([]tx.Coin, 0, n)
		var total int64
		for j := 0; j < n; j++ {
			v := r.Int63n(1000) + 1
			total += v
			cs = append(cs, tx.Coin{Value: v})
		}

		target := r.Int63n(1500) + 1
		fee := r.Int63n(10)

		sel, err := Greedy(cs, target, fee)
		if total < target+fee {
			assert.True(t, errors.Is(err, ErrInsufficientFunds))
			assert.Nil(t, sel)
			continue
		}

		require.NoError(t, err)
		assert.GreaterOrEqual(t, sel.Total(), target+fee)
		assert.GreaterOrEqual(t, sel.ChangeValue, int64(0))
		assert.Equal(t, sel.Total()-target-fee, sel.ChangeValue)

		// dropping the last chosen coin must leave the target uncovered
		last := sel.Chosen[len(sel.Chosen)-1]
		assert.Less(t, sel.Total()-last.Value, target+fee)
	}
}

func TestAggregateAssets(t *testing.T) {
	cs := []tx.Coin{
		{Value: 1, Assets: []tx.Asset{{TokenID: "x", Amount: 2}, {TokenID: "y", Amount: 1}}},
		{Value: 1},
		{Value: 1, Assets: []tx.Asset{{TokenID: "y", Amount: 4}, {TokenID: "z", Amount: 7}, {TokenID: "x", Amount: 1}}},
	}

	assert.Equal(t, []tx.Asset{
		{TokenID: "x", Amount: 3},
		{TokenID: "y", Amount: 5},
		{TokenID: "z", Amount: 7},
	}, AggregateAssets(cs))

	// inputs are not mutated by aggregation
	assert.Equal(t, int64(2), cs[0].Assets[0].Amount)
	assert.Empty(t, AggregateAssets(nil))
}
