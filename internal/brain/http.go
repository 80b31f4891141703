package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAdapter forwards turns to a compatible HTTP endpoint. The endpoint
// receives the TurnRequest as JSON and must answer with at least
// {"ai_reply": "..."}.
type HTTPAdapter struct {
	url    string
	client *http.Client
}

func NewHTTPAdapter(url string) *HTTPAdapter {
	return &HTTPAdapter{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (a *HTTPAdapter) Reply(ctx context.Context, req TurnRequest) (TurnReply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return TurnReply{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return TurnReply{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(httpReq)
	if err != nil {
		return TurnReply{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return TurnReply{}, fmt.Errorf("brain http status %d: %s", res.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return TurnReply{}, fmt.Errorf("read response: %w", err)
	}

	var reply TurnReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return TurnReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return TurnReply{}, ErrMalformedReply
	}
	return reply, nil
}
