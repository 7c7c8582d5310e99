package tx

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestMarshal(t *testing.T) {
	req := &Request{
		Outputs: []Output{
			{
				Address:   "auction",
				Value:     115,
				Assets:    []Asset{{TokenID: "t1", Amount: 1}},
				Registers: Registers{R4: "0e0101"},
			},
			{Address: "A", Value: 100},
		},
		Fee:       1,
		RawInputs: []string{"aa", "bb"},
	}

	b, err := req.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	reqRB := &Request{}

	if err := reqRB.Unmarshal(b); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, req, reqRB)
}

func TestBalance(t *testing.T) {
	inputs := []Coin{
		{ID: "auction", Value: 100, Assets: []Asset{{TokenID: "t1", Amount: 1}}},
		{ID: "c1", Value: 120, Assets: []Asset{{TokenID: "t2", Amount: 5}}},
	}

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{
			name: "balanced",
			req: Request{
				Outputs: []Output{
					{Address: "auction", Value: 115, Assets: []Asset{{TokenID: "t1", Amount: 1}}},
					{Address: "A", Value: 100},
					{Address: "B", Value: 4, Assets: []Asset{{TokenID: "t2", Amount: 5}}},
				},
				Fee: 1,
			},
		},
		{
			name: "value leak",
			req: Request{
				Outputs: []Output{
					{Address: "auction", Value: 115, Assets: []Asset{{TokenID: "t1", Amount: 1}}},
					{Address: "B", Value: 4, Assets: []Asset{{TokenID: "t2", Amount: 5}}},
				},
				Fee: 1,
			},
			wantErr: true,
		},
		{
			name: "asset dropped",
			req: Request{
				Outputs: []Output{
					{Address: "auction", Value: 115, Assets: []Asset{{TokenID: "t1", Amount: 1}}},
					{Address: "A", Value: 100},
					{Address: "B", Value: 4},
				},
				Fee: 1,
			},
			wantErr: true,
		},
		{
			name: "asset minted",
			req: Request{
				Outputs: []Output{
					{Address: "auction", Value: 115, Assets: []Asset{{TokenID: "t1", Amount: 1}, {TokenID: "t3", Amount: 1}}},
					{Address: "A", Value: 100},
					{Address: "B", Value: 4, Assets: []Asset{{TokenID: "t2", Amount: 5}}},
				},
				Fee: 1,
			},
			wantErr: true,
		},
		{
			name: "negative output",
			req: Request{
				Outputs: []Output{
					{Address: "auction", Value: 225, Assets: []Asset{{TokenID: "t1", Amount: 1}, {TokenID: "t2", Amount: 5}}},
					{Address: "A", Value: -6},
				},
				Fee: 1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Balance(inputs)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnbalanced))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
