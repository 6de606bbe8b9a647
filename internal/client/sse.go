package client

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"occtl/internal/logging"
)

// OpenEvents opens the long-lived SSE connection to the server event
// endpoint. It returns a channel of raw frame payloads and a cancel func that
// aborts the underlying request. The channel closes when the stream ends for
// any reason; decoding and typed dispatch happen upstream.
func (c *Client) OpenEvents(ctx context.Context) (<-chan json.RawMessage, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/event", nil), nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The shared client carries a request timeout that would kill a
	// long-lived stream; cancellation comes from ctx instead.
	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		cancel()
		return nil, nil, decodeAPIError(resp)
	}

	ch := make(chan json.RawMessage, 256)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		count := 0
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		var dataLines []string

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if len(dataLines) == 0 {
					continue
				}
				payload := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]
				select {
				case ch <- json.RawMessage(payload):
					count++
				case <-ctx.Done():
					return
				}
				continue
			}
			if strings.HasPrefix(line, "data:") {
				dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			c.log.Warn("event stream read error", logging.F("err", err))
		}
		c.log.Debug("event stream closed", logging.F("frames", count))
	}()

	return ch, cancel, nil
}
