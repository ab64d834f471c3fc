package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/GreenHouse007/world-builder/internal/domain"
)

// Transport is the network boundary the session talks through: fetch the
// authoritative world list, or push a change batch and receive the canonical
// list back. Both calls may fail; the session treats any failure as "offline".
type Transport interface {
	FetchWorlds(ctx context.Context) ([]*domain.World, error)
	PushChanges(ctx context.Context, changes []domain.WorldChange) ([]*domain.World, error)
}

// HTTPTransport talks to the world-builder API over JSON/HTTP.
type HTTPTransport struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewHTTPTransport(baseURL, token string) *HTTPTransport {
	return &HTTPTransport{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *HTTPTransport) FetchWorlds(ctx context.Context) ([]*domain.World, error) {
	return t.request(ctx, http.MethodGet, "/api/worlds", nil)
}

func (t *HTTPTransport) PushChanges(ctx context.Context, changes []domain.WorldChange) ([]*domain.World, error) {
	return t.request(ctx, http.MethodPost, "/api/worlds/sync", changes)
}

func (t *HTTPTransport) request(ctx context.Context, method, path string, body any) ([]*domain.World, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	var worlds []*domain.World
	if err := json.NewDecoder(resp.Body).Decode(&worlds); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return worlds, nil
}
