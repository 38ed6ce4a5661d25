package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// envelopeKeys are the fields agents commonly wrap their real payload in.
var envelopeKeys = []string{"response", "output", "text", "content"}

// Decode parses an agent reply into a Document.
//
// The reply may be a JSON object, a JSON string holding an object, or plain
// text with the object inside ``` fences. An object whose only payload is
// a string envelope field holding JSON is unwrapped. Text that contains no
// object is returned as {"text": ...} so callers can still display it.
func Decode(body []byte) (Document, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body: %w", errors.ErrMalformedResponse)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		// Not JSON at all: treat as model text.
		return DecodeText(string(body))
	}

	switch v := raw.(type) {
	case map[string]any:
		return unwrapEnvelope(Document(v)), nil
	case string:
		return DecodeText(v)
	default:
		return nil, fmt.Errorf("top-level %T is not an object: %w", raw, errors.ErrMalformedResponse)
	}
}

// DecodeText extracts a JSON object from model text, stripping code fences.
// Text without a parsable object becomes {"text": text}.
func DecodeText(text string) (Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text: %w", errors.ErrMalformedResponse)
	}

	if candidate, ok := extractObject(text); ok {
		var doc Document
		if err := json.Unmarshal([]byte(candidate), &doc); err == nil {
			return unwrapEnvelope(doc), nil
		}
	}
	return Document{"text": text}, nil
}

// unwrapEnvelope replaces {"response": "<json object>"} style wrappers with
// the inner object. Documents with other fields are returned unchanged.
func unwrapEnvelope(doc Document) Document {
	if len(doc) != 1 {
		return doc
	}
	for _, key := range envelopeKeys {
		s, ok := doc[key].(string)
		if !ok {
			continue
		}
		candidate, ok := extractObject(strings.TrimSpace(s))
		if !ok {
			return doc
		}
		var inner Document
		if err := json.Unmarshal([]byte(candidate), &inner); err != nil {
			return doc
		}
		return inner
	}
	return doc
}

// extractObject returns the text between the first '{' and the last '}',
// after removing a surrounding ``` fence if present.
func extractObject(text string) (string, bool) {
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:] // drop the language tag line
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
