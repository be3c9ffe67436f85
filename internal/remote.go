package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteClient fetches source images over HTTP, optionally sending an API key.
type RemoteClient struct {
	apiKey string
	client HTTPClient
}

func NewRemoteClient(apiKey string) *RemoteClient {
	return &RemoteClient{
		apiKey: apiKey,
		client: &http.Client{},
	}
}

// Fetch returns the response body for url; the caller must close it.
func (rc *RemoteClient) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	log.Printf("Retrieving: %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if rc.apiKey != "" {
		req.Header.Set("apikey", rc.apiKey)
	}
	req.Header.Set("Accept", "image/*")

	res, err := rc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}

	if res.StatusCode > 299 {
		_ = res.Body.Close()
		return nil, fmt.Errorf("http status response from %s: %s", url, res.Status)
	}

	return res.Body, nil
}
