// Package agent talks to the external AI agent service.
//
// Every call sends a text prompt and an agent identifier and gets back a
// loosely-typed JSON object. Callers read it through the coercing accessors
// on Document, each of which takes an explicit default.
package agent

import (
	"context"
)

// Request is a single prompt addressed to one agent.
type Request struct {
	AgentID string `json:"agent_id"`
	Prompt  string `json:"prompt"`

	// NoCache asks caching clients to always reach the agent. It is not
	// sent on the wire.
	NoCache bool `json:"-"`
}

// Client invokes agents.
type Client interface {
	Invoke(ctx context.Context, req Request) (Document, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (Document, error)

// Invoke calls f.
func (f ClientFunc) Invoke(ctx context.Context, req Request) (Document, error) {
	return f(ctx, req)
}
