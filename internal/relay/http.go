package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"olmkit/internal/domain"
)

// ErrNotFound is returned when the relay has no keys for a user.
var ErrNotFound = errors.New("relay: not found")

type HTTP struct {
	Base string
	HTTP *http.Client
}

func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: base, HTTP: client}
}

var _ domain.RelayClient = (*HTTP)(nil)

func (c *HTTP) PublishKeys(ctx context.Context, username domain.Username, keys domain.PublishedKeys) error {
	return c.do(ctx, http.MethodPost, keysPath(username), keys, nil)
}

func (c *HTTP) FetchKeys(ctx context.Context, username domain.Username) (domain.PublishedKeys, error) {
	var out domain.PublishedKeys
	if err := c.do(ctx, http.MethodGet, keysPath(username), nil, &out); err != nil {
		return domain.PublishedKeys{}, err
	}
	return out, nil
}

func (c *HTTP) ClaimOneTimeKey(ctx context.Context, username domain.Username) (domain.ClaimedKey, error) {
	var out domain.ClaimedKey
	err := c.do(ctx, http.MethodPost, keysPath(username)+"/claim", nil, &out)
	if errors.Is(err, ErrNotFound) {
		return domain.ClaimedKey{}, domain.NewError(domain.KindOneTimeKeyExhausted, "claim_one_time_key", err)
	}
	if err != nil {
		return domain.ClaimedKey{}, err
	}
	return out, nil
}

func (c *HTTP) SendMessage(ctx context.Context, env domain.Envelope) error {
	return c.do(ctx, http.MethodPost, msgPath(env.To), env, nil)
}

func (c *HTTP) FetchMessages(ctx context.Context, username domain.Username, limit int) ([]domain.Envelope, error) {
	path := msgPath(username)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var envs []domain.Envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &envs); err != nil {
		return nil, err
	}
	return envs, nil
}

func (c *HTTP) AckMessages(ctx context.Context, username domain.Username, count int) error {
	return c.do(ctx, http.MethodPost, msgPath(username)+"/ack", struct {
		Count int `json:"count"`
	}{Count: count}, nil)
}

func keysPath(u domain.Username) string { return "/keys/" + url.PathEscape(string(u)) }
func msgPath(u domain.Username) string { return "/msg/" + url.PathEscape(string(u)) }

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("relay %s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay %s %s: %s", method, path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
