package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kozaktomas/photobook/internal/book"
)

// reply is one model answer together with the tokens it cost.
type reply struct {
	text         string
	inputTokens  int
	outputTokens int
}

// correction pairs a rejected answer with the message asking the model to fix it.
type correction struct {
	answer  string
	message string
}

// askFunc sends the opening prompt followed by every earlier correction, oldest first.
type askFunc func(ctx context.Context, corrections []correction) (reply, error)

// converse asks for a narrative until the answer parses. Each malformed
// answer goes back to the model with the parse error, at most maxRetries times.
func converse(ctx context.Context, backend string, ask askFunc, usage *usageMeter, pricing RequestPricing, sampled int) (*book.Narrative, error) {
	var corrections []correction
	var lastErr error
	var last string

	for range maxRetries {
		r, err := ask(ctx, corrections)
		if err != nil {
			return nil, fmt.Errorf("%s API error: %w", backend, err)
		}
		usage.add(r.inputTokens, r.outputTokens, pricing)
		if r.text == "" {
			return nil, fmt.Errorf("no response from %s", backend)
		}

		narrative, err := parseNarrative(r.text, sampled)
		if err == nil {
			return narrative, nil
		}
		lastErr, last = err, r.text
		corrections = append(corrections, correction{answer: r.text, message: retryMessage(err)})
	}

	return nil, fmt.Errorf("failed to parse narrative JSON after %d attempts: %w (last response: %s)", maxRetries, lastErr, last)
}

// postJSON sends in as a JSON body and decodes a 200 response into out.
func postJSON(ctx context.Context, client *http.Client, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
