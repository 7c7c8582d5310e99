package tx

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Register slot names carried by a box.
const (
	R4 = "R4"
	R5 = "R5"
	R6 = "R6"
	R7 = "R7"
	R8 = "R8"
	R9 = "R9"
)

// Registers maps a slot name to its hex encoded serialized value.
type Registers map[string]string

type Asset struct {
	TokenID string `json:"tokenId" msgpack:"i"`
	Amount  int64  `json:"amount" msgpack:"a"`
}

type Output struct {
	Address   string    `json:"address" msgpack:"d"`
	Value     int64     `json:"value" msgpack:"v"`
	Assets    []Asset   `json:"assets,omitempty" msgpack:"a,omitempty"`
	Registers Registers `json:"registers,omitempty" msgpack:"r,omitempty"`
}

// Request is a transaction request accepted by the node wallet. Inputs are
// chosen by the wallet unless RawInputs is set.
type Request struct {
	Outputs   []Output `json:"requests" msgpack:"o"`
	Fee       int64    `json:"fee" msgpack:"f"`
	RawInputs []string `json:"inputsRaw,omitempty" msgpack:"i,omitempty"`
}

// Marshal encodes the request with register maps in key order, so equal
// requests encode to equal bytes.
func (r *Request) Marshal() ([]byte, error) {
	var buf bytes.Buffer

	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)

	if err := enc.Encode(r); err != nil {
		return nil, errors.Wrap(err, "marshaling request")
	}

	return buf.Bytes(), nil
}

func (r *Request) Unmarshal(b []byte) error {
	if err := msgpack.Unmarshal(b, r); err != nil {
		return errors.Wrap(err, "unmarshaling request")
	}

	return nil
}

// OutputValue is the sum of all output values, excluding the fee.
func (r *Request) OutputValue() int64 {
	var v int64
	for _, o := range r.Outputs {
		v += o.Value
	}
	return v
}

// OutputAssets sums every asset amount across all outputs.
func (r *Request) OutputAssets() map[string]int64 {
	m := map[string]int64{}
	for _, o := range r.Outputs {
		for _, a := range o.Assets {
			m[a.TokenID] += a.Amount
		}
	}
	return m
}

// Balance checks that spending inputs with the request conserves both value
// and every asset: inputs = outputs + fee.
func (r *Request) Balance(inputs []Coin) error {
	var in int64
	inAssets := map[string]int64{}
	for _, c := range inputs {
		in += c.Value
		for _, a := range c.Assets {
			inAssets[a.TokenID] += a.Amount
		}
	}

	for _, o := range r.Outputs {
		if o.Value <= 0 {
			return errors.Wrapf(ErrUnbalanced, "non-positive output value %d", o.Value)
		}
	}

	if out := r.OutputValue() + r.Fee; in != out {
		return errors.Wrapf(ErrUnbalanced, "inputs %d != outputs+fee %d", in, out)
	}

	outAssets := r.OutputAssets()
	for id, amt := range inAssets {
		if outAssets[id] != amt {
			return errors.Wrapf(ErrUnbalanced, "asset %s: inputs %d != outputs %d", id, amt, outAssets[id])
		}
	}
	for id, amt := range outAssets {
		if _, ok := inAssets[id]; !ok && amt != 0 {
			return errors.Wrapf(ErrUnbalanced, "asset %s created from nothing", id)
		}
	}

	return nil
}
