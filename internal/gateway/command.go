// Package gateway implements the command protocol: newline-delimited JSON
// requests in, one JSON response line per completed command out, with
// diagnostics on a separate logger.
package gateway

import "context"

// Content is one entry of a command response body.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is the structured result of a command handler. IsError marks an
// application-level failure; the dispatch itself still succeeded and the
// process keeps serving requests.
type Response struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResponse wraps text in a successful response.
func TextResponse(text string) Response {
	return Response{Content: []Content{{Type: "text", Text: text}}}
}

// ErrorResponse wraps text in an application-level error response.
func ErrorResponse(text string) Response {
	return Response{Content: []Content{{Type: "text", Text: text}}, IsError: true}
}

// Handler executes a validated command. Handlers report failures through
// the response, never by terminating the process.
type Handler func(ctx context.Context, params Params) Response

// Command pairs a parameter schema with its handler.
type Command struct {
	Schema  Schema
	Handler Handler
}

// Registry maps command names to commands. It is built once at startup
// and passed to the dispatcher as a value.
type Registry map[string]Command
