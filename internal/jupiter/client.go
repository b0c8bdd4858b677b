// Package jupiter implements the HTTP client for the Jupiter quote and
// swap-building API.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jupiter-gateway/internal/observability"
)

// DefaultTimeout bounds every outbound API call. A hung upstream must not
// hold a handler forever.
const DefaultTimeout = 15 * time.Second

// Client talks to the Jupiter price/swap API.
type Client struct {
	base   string
	client *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a Jupiter API client rooted at base.
func NewClient(base string, opts ...ClientOption) *Client {
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote is the slice of the quote payload the gateway interprets, plus the
// raw payload passed through untouched to the swap builder.
type Quote struct {
	OutAmount float64
	Raw       json.RawMessage
}

// quotePayload extracts the fields the gateway reads from a quote response.
type quotePayload struct {
	OutAmount flexAmount `json:"outAmount"`
}

// flexAmount decodes Jupiter amount fields, which arrive as JSON strings on
// current API versions and as bare numbers on older deployments.
type flexAmount float64

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	*a = flexAmount(v)
	return nil
}

// GetQuote requests a price quote for swapping amount of inputMint into
// outputMint within slippageBps. amount is in the input token's smallest
// units.
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount float64, slippageBps int) (*Quote, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	q.Set("slippageBps", strconv.Itoa(slippageBps))
	u := c.base + "/quote?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	observability.ObserveAPIRequest("quote", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}

	return &Quote{
		OutAmount: float64(payload.OutAmount),
		Raw:       json.RawMessage(body),
	}, nil
}

// swapRequest is the body of a swap-building call. The quote payload is
// passed back verbatim; the builder handles wrapping and unwrapping of
// native SOL.
type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// BuildSwap asks the swap builder for a serialized transaction realizing
// quote, to be submitted by userPublicKey. The returned payload is the
// base64-encoded transaction exactly as the API produced it.
func (c *Client) BuildSwap(ctx context.Context, quote *Quote, userPublicKey string) (string, error) {
	body, err := json.Marshal(swapRequest{
		QuoteResponse:    quote.Raw,
		UserPublicKey:    userPublicKey,
		WrapAndUnwrapSol: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	observability.ObserveAPIRequest("swap", time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("swap request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read swap response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("swap status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var sr swapResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		return "", fmt.Errorf("unmarshal swap response: %w", err)
	}
	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing swapTransaction")
	}

	return sr.SwapTransaction, nil
}
