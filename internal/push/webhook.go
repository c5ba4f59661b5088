package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// webhookNotifier posts a JSON payload to an incoming-webhook URL.
// Feishu, DingTalk and WeWork differ only in payload shape.
type webhookNotifier struct {
	name    string
	url     string
	client  *http.Client
	payload func(text string) any
}

func (w *webhookNotifier) Name() string { return w.name }

func (w *webhookNotifier) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(w.payload(text))
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", w.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", w.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s webhook returned status %d", w.name, resp.StatusCode)
	}
	return nil
}

func newWebhook(name, url string, payload func(text string) any) *webhookNotifier {
	return &webhookNotifier{
		name:    name,
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		payload: payload,
	}
}

func newFeishu(url string) *webhookNotifier {
	return newWebhook("feishu", url, func(text string) any {
		return map[string]any{
			"msg_type": "text",
			"content":  map[string]string{"text": text},
		}
	})
}

func newDingTalk(url string) *webhookNotifier {
	return newWebhook("dingtalk", url, func(text string) any {
		return map[string]any{
			"msgtype": "text",
			"text":    map[string]string{"content": text},
		}
	})
}

func newWework(url string) *webhookNotifier {
	return newWebhook("wework", url, func(text string) any {
		return map[string]any{
			"msgtype": "text",
			"text":    map[string]string{"content": text},
		}
	})
}
