package registers

import (
	"context"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// AddressCodec maps between wallet addresses and their binary spending
// scripts. Deriving either direction is left to the node. TreeToAddress
// wraps ErrDecode when the tree itself is not a valid script.
type AddressCodec interface {
	AddressToTree(ctx context.Context, address string) ([]byte, error)
	TreeToAddress(ctx context.Context, tree []byte) (string, error)
}

var _ AddressCodec = (*CachedAddresses)(nil)

// CachedAddresses memoises lookups of another AddressCodec. Address scripts
// never change, so entries are only evicted by size.
type CachedAddresses struct {
	next  AddressCodec
	trees *lru.Cache
	addrs *lru.Cache
}

func NewCachedAddresses(next AddressCodec, size int) (*CachedAddresses, error) {
	trees, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating tree cache")
	}

	addrs, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating address cache")
	}

	return &CachedAddresses{next: next, trees: trees, addrs: addrs}, nil
}

func (c *CachedAddresses) AddressToTree(ctx context.Context, address string) ([]byte, error) {
	if v, ok := c.trees.Get(address); ok {
		return v.([]byte), nil
	}

	tree, err := c.next.AddressToTree(ctx, address)
	if err != nil {
		return nil, err
	}

	c.trees.Add(address, tree)
	c.addrs.Add(hex.EncodeToString(tree), address)

	return tree, nil
}

func (c *CachedAddresses) TreeToAddress(ctx context.Context, tree []byte) (string, error) {
	key := hex.EncodeToString(tree)
	if v, ok := c.addrs.Get(key); ok {
		return v.(string), nil
	}

	addr, err := c.next.TreeToAddress(ctx, tree)
	if err != nil {
		return "", err
	}

	c.addrs.Add(key, addr)
	c.trees.Add(addr, tree)

	return addr, nil
}
