package tx

// Coin is a spendable box owned by a wallet.
type Coin struct {
	ID     string  `json:"boxId"`
	Value  int64   `json:"value"`
	Assets []Asset `json:"assets"`
}

// Box is a box as listed by the explorer/node, including its registers.
type Box struct {
	ID             string    `json:"boxId"`
	Value          int64     `json:"value"`
	Address        string    `json:"address,omitempty"`
	Assets         []Asset   `json:"assets"`
	CreationHeight int64     `json:"creationHeight"`
	Registers      Registers `json:"additionalRegisters"`
}

// Coin drops the box registers, leaving what matters for value accounting.
func (b *Box) Coin() Coin {
	return Coin{ID: b.ID, Value: b.Value, Assets: b.Assets}
}

// Input references a box spent by a signed transaction.
type Input struct {
	BoxID string `json:"boxId"`
}

// Signed is a transaction generated and signed by the node wallet.
type Signed struct {
	ID      string  `json:"id"`
	Inputs  []Input `json:"inputs"`
	Outputs []Box   `json:"outputs"`
	Raw     []byte  `json:"-"`
}
