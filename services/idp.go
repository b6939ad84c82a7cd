// ABOUTME: OAuth client for the external identity provider
// ABOUTME: Performs password and refresh_token grants against the IdP token endpoint

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenResponse represents the OAuth token response from the identity provider
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// IdPClient talks to the external identity provider's OAuth endpoints.
// Token verification is the JWKSClient's job; this client only obtains tokens.
type IdPClient struct {
	idpURL       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewIdPClient creates an IdP OAuth client. If httpClient is nil, a default
// client with 30s timeout is used.
func NewIdPClient(idpURL, clientID, clientSecret string, httpClient *http.Client) *IdPClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &IdPClient{
		idpURL:       idpURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
	}
}

// PasswordGrant exchanges a username and password for tokens.
func (c *IdPClient) PasswordGrant(username, password string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "password")
	data.Set("username", username)
	data.Set("password", password)

	return c.tokenRequest(data)
}

// RefreshGrant exchanges a refresh token for new tokens.
func (c *IdPClient) RefreshGrant(refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return c.tokenRequest(data)
}

func (c *IdPClient) tokenRequest(data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequest(http.MethodPost, c.idpURL+"/oauth/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &tokenResp, nil
}
