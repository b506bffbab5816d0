package api

import (
	"context"
	"fmt"
	"net/http"
)

// ChatReply is the bot's answer to one support message. Category and
// Sentiment are classification metadata and may be empty.
type ChatReply struct {
	Response  string
	Category  string
	Sentiment string
}

// chatResponse is the wire form. Response is a pointer so a 2xx body that
// omits the field entirely can be told apart from an empty reply.
type chatResponse struct {
	Response  *string `json:"response"`
	Category  string  `json:"category"`
	Sentiment string  `json:"sentiment"`
}

// SendMessage submits one user message and returns the bot reply.
func (c *Client) SendMessage(ctx context.Context, token, text string) (ChatReply, error) {
	body := map[string]string{"message": text}

	var resp chatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", token, body, &resp); err != nil {
		return ChatReply{}, err
	}
	if resp.Response == nil {
		return ChatReply{}, fmt.Errorf("received invalid response from server")
	}

	return ChatReply{
		Response:  *resp.Response,
		Category:  resp.Category,
		Sentiment: resp.Sentiment,
	}, nil
}

// Health probes the backend's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, &status); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("backend unhealthy: %q", status.Status)
	}
	return nil
}
