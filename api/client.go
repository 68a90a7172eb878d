// Package api talks to the qSpeak backend: account login, release notes
// and the remote model catalogs.
package api

import (
	"net/http"
	"time"
)

// BaseURL is the root of the qSpeak backend API.
const BaseURL = "https://qspeak-api.fly.dev/api"

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
