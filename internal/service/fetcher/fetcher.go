package fetcher

import (
	"context"
	"detectionview/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DetectionsPath is the upstream endpoint returning the detection list.
const DetectionsPath = "/detections"

var (
	// ErrUnexpectedStatus is returned when the endpoint answers with anything but 200.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrDecode is returned when the body is not a JSON array of detections.
	ErrDecode = errors.New("malformed detections body")
)

// Fetcher retrieves the current detection list from the upstream server.
type Fetcher struct {
	client *http.Client
	url    string
}

// NewFetcher creates a Fetcher for baseURL. A nil client means http.DefaultClient.
func NewFetcher(baseURL string, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client: client,
		url:    strings.TrimRight(baseURL, "/") + DetectionsPath,
	}
}

// URL returns the full endpoint the Fetcher queries.
func (f *Fetcher) URL() string {
	return f.url
}

// FetchDetections issues one GET and decodes the body in server order.
func (f *Fetcher) FetchDetections(ctx context.Context) ([]model.Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: %w: %d", f.url, ErrUnexpectedStatus, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	var detections []model.Detection
	if err := dec.Decode(&detections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	// The array must be the whole body.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrDecode)
	}
	if detections == nil {
		detections = []model.Detection{}
	}
	return detections, nil
}
