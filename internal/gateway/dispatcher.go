package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"jupiter-gateway/internal/observability"
)

// maxFrameSize bounds a single request line.
const maxFrameSize = 1 << 20

// errFrameTooLong reports a request line over maxFrameSize. It is a
// protocol error, not a transport error: the line is drained and the
// dispatcher keeps serving.
var errFrameTooLong = errors.New("request line too long")

// request is one decoded protocol frame.
type request struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params"`
}

// protocolError is the dispatch-level failure frame: the request never
// reached a handler.
type protocolError struct {
	Error string `json:"error"`
}

// Dispatcher reads newline-delimited JSON requests, routes each through
// the registry and writes exactly one JSON line per completed command.
// Requests are dispatched on independent goroutines, so responses may
// complete out of arrival order.
type Dispatcher struct {
	registry Registry
	out      io.Writer
	outMu    sync.Mutex
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher writing protocol output to out.
func NewDispatcher(registry Registry, out io.Writer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		out:      out,
		log:      log,
	}
}

// Serve consumes in until EOF or read failure, then waits for in-flight
// handlers to finish. Per-request failures — including an oversized
// request line — never stop the loop; only a transport read error is
// returned.
func (d *Dispatcher) Serve(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReaderSize(in, 64*1024)

	for {
		frame, err := readFrame(reader)
		if errors.Is(err, errFrameTooLong) {
			d.log.Error().Int("limit", maxFrameSize).Msg("request line too long")
			observability.RecordProtocolError()
			d.writeJSON(protocolError{Error: fmt.Sprintf("malformed request: line exceeds %d bytes", maxFrameSize)})
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.wg.Wait()
			return fmt.Errorf("read requests: %w", err)
		}

		line := bytes.TrimSpace(frame)
		if len(line) == 0 {
			continue
		}

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.dispatch(ctx, line)
		}()
	}

	d.wg.Wait()
	d.log.Info().Msg("input stream closed")
	return nil
}

// readFrame reads one newline-terminated line into a fresh buffer. A line
// over maxFrameSize is drained to its end and reported as
// errFrameTooLong, so one oversized request cannot wedge the stream or
// take down the transport.
func readFrame(r *bufio.Reader) ([]byte, error) {
	var frame []byte
	tooLong := false

	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			frame = append(frame, chunk...)
			if len(frame) > maxFrameSize {
				frame = nil
				tooLong = true
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			// No newline yet; keep reading the same line.
			continue
		case errors.Is(err, io.EOF):
			if tooLong {
				return nil, errFrameTooLong
			}
			if len(frame) == 0 {
				return nil, io.EOF
			}
			return frame, nil
		case err != nil:
			return nil, err
		}

		// Newline reached.
		if tooLong {
			return nil, errFrameTooLong
		}
		return frame, nil
	}
}

// dispatch handles one framed request end to end.
func (d *Dispatcher) dispatch(ctx context.Context, frame []byte) {
	var req request
	if err := json.Unmarshal(frame, &req); err != nil {
		d.log.Error().Err(err).Msg("malformed request")
		observability.RecordProtocolError()
		d.writeJSON(protocolError{Error: fmt.Sprintf("malformed request: %v", err)})
		return
	}

	cmd, ok := d.registry[req.Command]
	if !ok {
		d.log.Error().Str("command", req.Command).Msg("unknown command")
		observability.RecordProtocolError()
		d.writeJSON(protocolError{Error: fmt.Sprintf("Unknown command: %s", req.Command)})
		return
	}

	params, err := cmd.Schema.Validate(req.Params)
	if err != nil {
		d.log.Error().Err(err).Str("command", req.Command).Msg("invalid parameters")
		observability.RecordProtocolError()
		d.writeJSON(protocolError{Error: err.Error()})
		return
	}

	resp := cmd.Handler(ctx, params)

	status := "ok"
	if resp.IsError {
		status = "error"
	}
	observability.RecordCommand(req.Command, status)
	d.writeJSON(resp)
}

// writeJSON emits one response line. The write lock keeps concurrent
// responses from interleaving.
func (d *Dispatcher) writeJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		d.log.Error().Err(err).Msg("marshal response")
		return
	}

	d.outMu.Lock()
	defer d.outMu.Unlock()
	if _, err := d.out.Write(append(data, '\n')); err != nil {
		d.log.Error().Err(err).Msg("write response")
	}
}
