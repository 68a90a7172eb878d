package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// LoginResponse acknowledges that a verification code was emailed.
type LoginResponse struct {
	Message string `json:"message"`
}

// LoginVerifyResponse carries the session token issued for a verified
// email address.
type LoginVerifyResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Accounts is the client for the two-step email login flow.
type Accounts struct {
	http    *http.Client
	baseURL string
	apiKey  *string
}

func NewAccounts(apiKey *string) *Accounts {
	return &Accounts{
		http:    newHTTPClient(),
		baseURL: BaseURL + "/accounts",
		apiKey:  apiKey,
	}
}

// Login requests a verification code for email.
func (a *Accounts) Login(ctx context.Context, email string) (LoginResponse, error) {
	var out LoginResponse
	err := a.post(ctx, "/login", map[string]string{"email": email}, &out)
	return out, err
}

// LoginVerify exchanges the emailed code for a session token.
func (a *Accounts) LoginVerify(ctx context.Context, email, code string) (LoginVerifyResponse, error) {
	var out LoginVerifyResponse
	err := a.post(ctx, "/login-verify", map[string]string{"email": email, "code": code}, &out)
	return out, err
}

func (a *Accounts) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != nil {
		req.Header.Set("Authorization", "Bearer "+*a.apiKey)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return errors.New("Failed to login")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New("Failed to login")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("login request failed with status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
