package gateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/auctionhouse/pkg/gateway"
	"github.com/tcfw/auctionhouse/pkg/registers"
	"github.com/tcfw/auctionhouse/pkg/tx"
	"github.com/tcfw/auctionhouse/pkg/wallet"
)

const (
	apiKeyHeader = "api_key"

	defaultTimeout    = 15 * time.Second
	defaultRetries    = 3
	defaultRetryDelay = 200 * time.Millisecond
)

var _ gateway.Gateway = (*Client)(nil)

// Client talks to a blockchain explorer for chain state and to a node for
// box lookups, address scripts and the wallet API.
type Client struct {
	explorer       string
	node           string
	auctionAddress string

	hc         *http.Client
	retries    uint
	retryDelay time.Duration
	logger     logrus.FieldLogger
}

type Option func(*Client) error

// WithNode sets the node used for box and script lookups.
func WithNode(u string) Option {
	return func(c *Client) error {
		c.node = wallet.NormaliseURL(u)
		return nil
	}
}

func WithAuctionAddress(addr string) Option {
	return func(c *Client) error {
		c.auctionAddress = addr
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.hc.Timeout = d
		return nil
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.hc = hc
		return nil
	}
}

// WithRetries sets the number of attempts made for idempotent reads.
func WithRetries(n uint, delay time.Duration) Option {
	return func(c *Client) error {
		if n == 0 {
			return errors.New("at least one attempt is required")
		}
		c.retries = n
		c.retryDelay = delay
		return nil
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

func NewClient(explorer string, opts ...Option) (*Client, error) {
	if explorer == "" {
		return nil, errors.New("explorer url required")
	}

	c := &Client{
		explorer:   wallet.NormaliseURL(explorer),
		hc:         &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func (c *Client) do(ctx context.Context, method, u, apiKey string, body []byte, out interface{}) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return errors.Wrap(err, "building request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrapf(gateway.ErrNetwork, "%s %s: %s", method, u, err)
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(gateway.ErrNetwork, "reading response: %s", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decoding response")
	}

	return nil
}

// get retries transport failures and 5xx responses. Anything else is
// returned as is, with non-2xx statuses mapped to ErrNotFound or ErrNetwork.
func (c *Client) get(ctx context.Context, u, apiKey string, out interface{}) error {
	return mapStatus(c.fetch(ctx, u, apiKey, out))
}

func (c *Client) fetch(ctx context.Context, u, apiKey string, out interface{}) error {
	return retry.Do(
		func() error {
			return c.do(ctx, http.MethodGet, u, apiKey, nil, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.retries),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			code := statusCode(err)
			return code == 0 || code >= 500
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithError(err).WithField("attempt", n+1).Debug("retrying request")
		}),
	)
}

func mapStatus(err error) error {
	switch code := statusCode(err); {
	case err == nil:
		return nil
	case code == http.StatusNotFound:
		return errors.Wrap(gateway.ErrNotFound, err.Error())
	case code != 0:
		return errors.Wrap(gateway.ErrNetwork, err.Error())
	}

	return err
}

func (c *Client) post(ctx context.Context, u, apiKey string, body []byte, out interface{}) error {
	return c.do(ctx, http.MethodPost, u, apiKey, body, out)
}

func (c *Client) nodeURL(path string, args ...interface{}) (string, error) {
	if c.node == "" {
		return "", errors.Wrap(gateway.ErrUnsupported, "no node configured")
	}
	return c.node + fmt.Sprintf(path, args...), nil
}

func (c *Client) Info(ctx context.Context) (*gateway.NodeInfo, error) {
	u, err := c.nodeURL("/info")
	if err != nil {
		return nil, err
	}

	info := &gateway.NodeInfo{}
	if err := c.get(ctx, u, "", info); err != nil {
		return nil, errors.Wrap(err, "node info")
	}

	return info, nil
}

type blocksResponse struct {
	Items []struct {
		Height int64 `json:"height"`
	} `json:"items"`
}

func (c *Client) Height(ctx context.Context) (int64, error) {
	resp := &blocksResponse{}
	if err := c.get(ctx, c.explorer+"/api/v1/blocks?limit=1", "", resp); err != nil {
		return 0, errors.Wrap(err, "latest block")
	}

	if len(resp.Items) == 0 {
		return 0, errors.Wrap(gateway.ErrNetwork, "explorer returned no blocks")
	}

	return resp.Items[0].Height, nil
}

// explorerBox is the explorer's box shape. Registers are either plain
// serialized hex or an object carrying serializedValue.
type explorerBox struct {
	ID             string                     `json:"boxId"`
	Value          int64                      `json:"value"`
	Address        string                     `json:"address"`
	CreationHeight int64                      `json:"creationHeight"`
	Assets         []tx.Asset                 `json:"assets"`
	Registers      map[string]json.RawMessage `json:"additionalRegisters"`
}

func (e *explorerBox) box() (*tx.Box, error) {
	b := &tx.Box{
		ID:             e.ID,
		Value:          e.Value,
		Address:        e.Address,
		CreationHeight: e.CreationHeight,
		Assets:         e.Assets,
		Registers:      make(tx.Registers, len(e.Registers)),
	}

	for slot, raw := range e.Registers {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			b.Registers[slot] = s
			continue
		}

		var rendered struct {
			SerializedValue string `json:"serializedValue"`
		}
		if err := json.Unmarshal(raw, &rendered); err != nil {
			return nil, errors.Wrapf(err, "box %s register %s", e.ID, slot)
		}
		b.Registers[slot] = rendered.SerializedValue
	}

	return b, nil
}

type boxPage struct {
	Items []*explorerBox `json:"items"`
	Total int            `json:"total"`
}

const boxPageSize = 100

// ActiveAuctionBoxes lists every unspent box at the auction address.
func (c *Client) ActiveAuctionBoxes(ctx context.Context) ([]*tx.Box, error) {
	if c.auctionAddress == "" {
		return nil, errors.New("auction address not configured")
	}

	var boxes []*tx.Box

	for offset := 0; ; offset += boxPageSize {
		u := fmt.Sprintf("%s/api/v1/boxes/unspent/byAddress/%s?offset=%d&limit=%d",
			c.explorer, url.PathEscape(c.auctionAddress), offset, boxPageSize)

		page := &boxPage{}
		if err := c.get(ctx, u, "", page); err != nil {
			return nil, errors.Wrap(err, "listing auction boxes")
		}

		for _, eb := range page.Items {
			b, err := eb.box()
			if err != nil {
				return nil, err
			}
			boxes = append(boxes, b)
		}

		if len(page.Items) < boxPageSize || len(boxes) >= page.Total {
			break
		}
	}

	return boxes, nil
}

func (c *Client) Box(ctx context.Context, id string) (*tx.Box, error) {
	u, err := c.nodeURL("/utxo/byId/%s", url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	b := &tx.Box{}
	if err := c.get(ctx, u, "", b); err != nil {
		return nil, errors.Wrapf(err, "box %s", id)
	}

	return b, nil
}

func (c *Client) RawBox(ctx context.Context, id string) (string, error) {
	u, err := c.nodeURL("/utxo/byIdBinary/%s", url.PathEscape(id))
	if err != nil {
		return "", err
	}

	resp := struct {
		Bytes string `json:"bytes"`
	}{}
	if err := c.get(ctx, u, "", &resp); err != nil {
		return "", errors.Wrapf(err, "raw box %s", id)
	}

	return resp.Bytes, nil
}

// DeriveAddress reads the wallet's root address.
func (c *Client) DeriveAddress(ctx context.Context, s *wallet.Session) (string, error) {
	if !s.Reachable() {
		return "", wallet.ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"derivationPath": "m"})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	resp := struct {
		Address string `json:"address"`
	}{}
	if err := c.post(ctx, s.Endpoint()+"/wallet/deriveKey", s.APIKey, body, &resp); err != nil {
		return "", errors.Wrap(mapStatus(err), "deriving wallet address")
	}

	if resp.Address == "" {
		return "", errors.Wrap(gateway.ErrNetwork, "wallet returned no address")
	}

	return resp.Address, nil
}

func (c *Client) Balances(ctx context.Context, s *wallet.Session) (*wallet.Balances, error) {
	if !s.Reachable() {
		return nil, wallet.ErrNotConfigured
	}

	b := &wallet.Balances{}
	if err := c.get(ctx, s.Endpoint()+"/wallet/balances", s.APIKey, b); err != nil {
		return nil, errors.Wrap(err, "wallet balances")
	}

	return b, nil
}

func (c *Client) UnspentCoins(ctx context.Context, s *wallet.Session) ([]tx.Coin, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var resp []struct {
		Box tx.Coin `json:"box"`
	}
	if err := c.get(ctx, s.Endpoint()+"/wallet/boxes/unspent", s.APIKey, &resp); err != nil {
		return nil, errors.Wrap(err, "wallet unspent boxes")
	}

	coins := make([]tx.Coin, 0, len(resp))
	for _, r := range resp {
		coins = append(coins, r.Box)
	}

	return coins, nil
}

func (c *Client) GenerateUnsigned(ctx context.Context, s *wallet.Session, req *tx.Request) ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	resp := struct {
		Inputs []tx.Input `json:"inputs"`
	}{}
	err = c.post(ctx, s.Endpoint()+"/wallet/transaction/generateUnsigned", s.APIKey, body, &resp)
	switch code := statusCode(err); {
	case err == nil:
	case code == http.StatusNotFound, code == http.StatusMethodNotAllowed, code == http.StatusNotImplemented:
		return nil, errors.Wrap(gateway.ErrUnsupported, err.Error())
	case code != 0:
		return nil, errors.Wrap(gateway.ErrSubmission, err.Error())
	default:
		return nil, err
	}

	ids := make([]string, 0, len(resp.Inputs))
	for _, in := range resp.Inputs {
		ids = append(ids, in.BoxID)
	}

	return ids, nil
}

// Generate asks the wallet to select inputs for, build and sign req.
func (c *Client) Generate(ctx context.Context, s *wallet.Session, req *tx.Request) (*tx.Signed, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}

	var raw []byte
	if err := c.post(ctx, s.Endpoint()+"/wallet/transaction/generate", s.APIKey, body, &raw); err != nil {
		if statusCode(err) != 0 {
			return nil, errors.Wrap(gateway.ErrSubmission, err.Error())
		}
		return nil, err
	}

	signed := &tx.Signed{}
	if err := json.Unmarshal(raw, signed); err != nil {
		return nil, errors.Wrap(err, "decoding signed transaction")
	}
	signed.Raw = raw

	return signed, nil
}

// Send broadcasts a signed transaction through the explorer.
func (c *Client) Send(ctx context.Context, signed *tx.Signed) (string, error) {
	body := signed.Raw
	if len(body) == 0 {
		var err error
		if body, err = json.Marshal(signed); err != nil {
			return "", errors.Wrap(err, "encoding transaction")
		}
	}

	resp := struct {
		ID string `json:"id"`
	}{}
	if err := c.post(ctx, c.explorer+"/api/v1/mempool/transactions/submit", "", body, &resp); err != nil {
		if statusCode(err) != 0 {
			return "", errors.Wrap(gateway.ErrSubmission, err.Error())
		}
		return "", err
	}

	c.logger.WithField("tx", resp.ID).Debug("transaction submitted")

	return resp.ID, nil
}

func (c *Client) AddressToTree(ctx context.Context, address string) ([]byte, error) {
	u, err := c.nodeURL("/script/addressToTree/%s", url.PathEscape(address))
	if err != nil {
		return nil, err
	}

	resp := struct {
		Tree string `json:"tree"`
	}{}
	if err := c.get(ctx, u, "", &resp); err != nil {
		return nil, errors.Wrapf(err, "address %s", address)
	}

	tree, err := hex.DecodeString(resp.Tree)
	if err != nil {
		return nil, errors.Wrap(err, "decoding tree")
	}

	return tree, nil
}

func (c *Client) TreeToAddress(ctx context.Context, tree []byte) (string, error) {
	u, err := c.nodeURL("/utils/ergoTreeToAddress/%s", hex.EncodeToString(tree))
	if err != nil {
		return "", err
	}

	resp := struct {
		Address string `json:"address"`
	}{}
	err = c.fetch(ctx, u, "", &resp)
	if statusCode(err) == http.StatusBadRequest {
		return "", errors.Wrap(registers.ErrDecode, err.Error())
	}
	if err != nil {
		return "", errors.Wrap(mapStatus(err), "tree to address")
	}

	return resp.Address, nil
}
