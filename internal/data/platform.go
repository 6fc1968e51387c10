package data

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/groupmute/groupmute/internal/biz/domain"
	"github.com/groupmute/groupmute/internal/logger"
)

// Invocation kinds sent to the platform
const (
	InvocationContent = "content"
	InvocationAction  = "action"
)

// maxRecordedInvocations bounds the dry-run record
const maxRecordedInvocations = 1000

// PlatformInvocation is one intent fired on the device
type PlatformInvocation struct {
	EventID     string            `json:"event_id"`
	Kind        string            `json:"kind"`
	ActionIndex int               `json:"action_index"`
	ActionTitle string            `json:"action_title,omitempty"`
	Inputs      map[string]string `json:"inputs,omitempty"`
}

// PlatformClient forwards intent invocations to the device-side listener.
// Without a callback URL it runs dry and only records what it would have sent.
type PlatformClient struct {
	callbackURL string
	httpClient  *http.Client
	log         *logger.Logger

	mu   sync.Mutex
	sent []PlatformInvocation
}

// NewPlatformClient creates a platform client; an empty callbackURL enables dry mode
func NewPlatformClient(callbackURL string, log *logger.Logger) *PlatformClient {
	if log == nil {
		log = logger.Nop()
	}
	return &PlatformClient{
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		log:         log.Component("platform"),
	}
}

// DryRun reports whether invocations stay in-process
func (c *PlatformClient) DryRun() bool {
	return c.callbackURL == ""
}

func (c *PlatformClient) SendContent(ctx context.Context, event *domain.NotificationEvent) error {
	return c.send(ctx, PlatformInvocation{
		EventID:     event.ID,
		Kind:        InvocationContent,
		ActionIndex: -1,
	})
}

func (c *PlatformClient) SendAction(ctx context.Context, event *domain.NotificationEvent, index int, inputs map[string]string) error {
	if index < 0 || index >= len(event.NativeActions) {
		return fmt.Errorf("action index %d out of range for %s", index, event.ID)
	}
	return c.send(ctx, PlatformInvocation{
		EventID:     event.ID,
		Kind:        InvocationAction,
		ActionIndex: index,
		ActionTitle: event.NativeActions[index].Title,
		Inputs:      inputs,
	})
}

// Invocations returns the most recent dry-run invocations, oldest first.
// Live mode keeps no record.
func (c *PlatformClient) Invocations() []PlatformInvocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PlatformInvocation(nil), c.sent...)
}

func (c *PlatformClient) send(ctx context.Context, inv PlatformInvocation) error {
	if !c.DryRun() {
		return c.post(ctx, inv)
	}

	c.log.Debug("Dry run invocation", "event_id", inv.EventID, "kind", inv.Kind, "index", inv.ActionIndex)
	c.mu.Lock()
	c.sent = append(c.sent, inv)
	if over := len(c.sent) - maxRecordedInvocations; over > 0 {
		c.sent = append(c.sent[:0], c.sent[over:]...)
	}
	c.mu.Unlock()
	return nil
}

func (c *PlatformClient) post(ctx context.Context, inv PlatformInvocation) error {
	body, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to encode invocation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call platform: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("platform returned %s", resp.Status)
	}
	return nil
}
