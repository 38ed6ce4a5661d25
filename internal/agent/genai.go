package agent

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// DefaultInstruction is the system instruction used for agent IDs without
// their own entry.
const DefaultInstruction = "You are a patient chess coach. " +
	"Always answer with a single JSON object and no surrounding prose."

// GenAIClient answers agent requests with a Gemini model. The agent ID
// selects the system instruction.
type GenAIClient struct {
	client       *genai.Client
	model        string
	timeout      time.Duration
	instructions map[string]string
}

// NewGenAIClient creates a Gemini-backed client. instructions maps agent
// IDs to system instructions and may be nil.
func NewGenAIClient(ctx context.Context, apiKey, model string, timeout time.Duration, instructions map[string]string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIClient{
		client:       client,
		model:        model,
		timeout:      timeout,
		instructions: instructions,
	}, nil
}

// Instruction returns the system instruction sent for agentID.
func (c *GenAIClient) Instruction(agentID string) string {
	if s, ok := c.instructions[agentID]; ok && s != "" {
		return s
	}
	return DefaultInstruction
}

// Invoke generates a JSON reply for req.
func (c *GenAIClient) Invoke(ctx context.Context, req Request) (Document, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(c.Instruction(req.AgentID), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2),
	})
	if err != nil {
		return nil, &errors.AgentError{
			Err:      fmt.Errorf("%w: %v", errors.ErrAgentUnavailable, err),
			AgentID:  req.AgentID,
			Attempts: 1,
		}
	}

	doc, err := DecodeText(resp.Text())
	if err != nil {
		return nil, &errors.AgentError{Err: err, AgentID: req.AgentID, Attempts: 1}
	}
	return doc, nil
}
