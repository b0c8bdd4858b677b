package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// Default confirmation watch settings.
const (
	DefaultConfirmTimeout = 90 * time.Second
	defaultWriteTimeout   = 10 * time.Second
)

// ConfirmationWatcher follows transaction signatures over the Solana
// WebSocket API. It is diagnostic only: watching never alters a command
// response or the swap ledger.
type ConfirmationWatcher struct {
	endpoint string
	timeout  time.Duration
	dialer   *websocket.Dialer
}

// NewConfirmationWatcher creates a watcher for the given WS endpoint.
func NewConfirmationWatcher(endpoint string) *ConfirmationWatcher {
	return &ConfirmationWatcher{
		endpoint: endpoint,
		timeout:  DefaultConfirmTimeout,
		dialer:   websocket.DefaultDialer,
	}
}

// WithConfirmTimeout sets how long Watch waits for a notification.
func (w *ConfirmationWatcher) WithConfirmTimeout(d time.Duration) *ConfirmationWatcher {
	w.timeout = d
	return w
}

// signatureSubscribe wire types.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	Params *wsNotifyParams `json:"params"`
}

type wsNotifyParams struct {
	Result struct {
		Context struct {
			Slot int64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Err interface{} `json:"err"`
		} `json:"value"`
	} `json:"result"`
}

// Watch opens a connection, subscribes to signature at confirmed
// commitment and blocks until the cluster reports it. It returns the slot
// the transaction landed in, or an error if the transaction failed on
// chain or no notification arrived within the watch timeout.
func (w *ConfirmationWatcher) Watch(ctx context.Context, signature string) (int64, error) {
	deadline := time.Now().Add(w.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	conn, _, err := w.dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()

	sub := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}
	conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}

	for {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("read notification: %w", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return 0, fmt.Errorf("unmarshal notification: %w", err)
		}

		if msg.Error != nil {
			return 0, msg.Error
		}
		// Subscription confirmation carries our request ID; keep reading.
		if msg.ID == sub.ID {
			continue
		}
		if msg.Method != "signatureNotification" || msg.Params == nil {
			continue
		}

		slot := msg.Params.Result.Context.Slot
		if txErr := msg.Params.Result.Value.Err; txErr != nil {
			return slot, fmt.Errorf("transaction failed on chain: %v", txErr)
		}
		return slot, nil
	}
}
