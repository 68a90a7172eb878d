package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.qspeak.app/qspeak/state"
)

// Releases fetches published release notes from the backend.
type Releases struct {
	http    *http.Client
	baseURL string
}

func NewReleases() *Releases {
	return &Releases{http: newHTTPClient(), baseURL: BaseURL}
}

func (r *Releases) GetReleases(ctx context.Context) ([]state.Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/releases", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, errors.New("Failed to fetch releases")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", body)
	}

	var releases []state.Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, errors.New("Failed to parse releases response")
	}
	return releases, nil
}
