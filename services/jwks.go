// ABOUTME: JWKS fetching and JWT verification for the identity provider
// ABOUTME: Converts the IdP's JWKS endpoint response into RSA public keys and verifies bearer tokens

package services

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// jwksResponse represents the JSON structure returned by the IdP JWKS endpoint
type jwksResponse struct {
	Keys []jwkKey `json:"keys"`
}

// jwkKey represents a single JSON Web Key in the JWKS response
type jwkKey struct {
	Kty string `json:"kty"` // Key type (must be "RSA" for our use)
	Kid string `json:"kid"` // Key ID
	N   string `json:"n"`   // RSA modulus (base64url encoded)
	E   string `json:"e"`   // RSA exponent (base64url encoded)
	Alg string `json:"alg"` // Algorithm (e.g., "RS256")
	Use string `json:"use"` // Key use (e.g., "sig" for signature)
}

// ErrUnknownKeyID indicates a JWT references a key ID not present in the JWKS key set.
var ErrUnknownKeyID = errors.New("unknown key ID")

// parseJWKS parses a JWKS JSON response and returns a map of key ID to RSA public key.
// Non-RSA keys are silently skipped.
func parseJWKS(data []byte) (map[string]*rsa.PublicKey, error) {
	var response jwksResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS JSON: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, jwk := range response.Keys {
		if jwk.Kty != "RSA" {
			continue
		}

		pubKey, err := parseRSAPublicKey(jwk.N, jwk.E)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA key %s: %w", jwk.Kid, err)
		}

		keys[jwk.Kid] = pubKey
	}

	return keys, nil
}

// parseRSAPublicKey decodes base64url-encoded modulus and exponent into an RSA public key
func parseRSAPublicKey(nB64, eB64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// TokenClaims contains the extracted claims from a verified bearer token.
// Email is the identity the role resolver keys account lookups on.
type TokenClaims struct {
	Subject string
	Email   string
	Name    string
	Scopes  []string
}

// jwtHeader represents the header portion of a JWT for parsing
type jwtHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ"`
}

// jwtPayload represents the claims portion of a JWT for parsing
type jwtPayload struct {
	Sub   string   `json:"sub"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Exp   int64    `json:"exp"`
	Nbf   int64    `json:"nbf"`
	Iat   int64    `json:"iat"`
	Scope []string `json:"scope"`
}

// supportedAlgorithms defines the only allowed signing algorithms (RS256/RS384/RS512).
// This prevents algorithm confusion attacks where an attacker might try to use
// symmetric algorithms (HS256) or "none".
var supportedAlgorithms = map[string]struct {
	hash       func() hash.Hash
	cryptoHash crypto.Hash
}{
	"RS256": {sha256.New, crypto.SHA256},
	"RS384": {sha512.New384, crypto.SHA384},
	"RS512": {sha512.New, crypto.SHA512},
}

// verifyJWT verifies a JWT signature and extracts claims.
// The signature is verified before any claim is trusted, including expiration.
func verifyJWT(token string, keys map[string]*rsa.PublicKey) (*TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed JWT: expected 3 parts, got %d", len(parts))
	}

	headerB64, payloadB64, signatureB64 := parts[0], parts[1], parts[2]

	headerJSON, err := base64.RawURLEncoding.DecodeString(headerB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT header: %w", err)
	}

	var header jwtHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("failed to parse JWT header: %w", err)
	}

	algInfo, ok := supportedAlgorithms[header.Alg]
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm %q: only RS256, RS384, RS512 are allowed", header.Alg)
	}

	if header.Kid == "" {
		return nil, fmt.Errorf("JWT missing required kid header")
	}

	publicKey, ok := keys[header.Kid]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in JWKS", ErrUnknownKeyID, header.Kid)
	}

	signature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT signature: %w", err)
	}

	signingInput := headerB64 + "." + payloadB64
	hashFunc := algInfo.hash()
	hashFunc.Write([]byte(signingInput))
	hashed := hashFunc.Sum(nil)

	if err := rsa.VerifyPKCS1v15(publicKey, algInfo.cryptoHash, hashed, signature); err != nil {
		return nil, fmt.Errorf("invalid JWT signature: %w", err)
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT payload: %w", err)
	}

	var payload jwtPayload
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JWT claims: %w", err)
	}

	now := time.Now().Unix()

	// RFC 7519: token is invalid before nbf and after exp
	if payload.Nbf > 0 && now < payload.Nbf {
		return nil, fmt.Errorf("token not valid yet (nbf: %d, now: %d)", payload.Nbf, now)
	}
	if payload.Exp > 0 && now > payload.Exp {
		return nil, fmt.Errorf("token expired (exp: %d, now: %d)", payload.Exp, now)
	}

	if payload.Sub == "" && payload.Email == "" {
		return nil, fmt.Errorf("token missing required identity claims (sub or email)")
	}

	return &TokenClaims{
		Subject: payload.Sub,
		Email:   payload.Email,
		Name:    payload.Name,
		Scopes:  payload.Scope,
	}, nil
}

// JWKSClient fetches and caches JWKS keys from the identity provider.
// Uses singleflight to prevent thundering herd when refreshing keys.
type JWKSClient struct {
	idpURL     string
	httpClient *http.Client
	keys       map[string]*rsa.PublicKey
	mu         sync.RWMutex
	sfGroup    singleflight.Group
}

// NewJWKSClient creates a new JWKS client and fetches initial keys.
// If httpClient is nil, a default client with 30s timeout is used.
// Returns an error if the initial key fetch fails.
func NewJWKSClient(idpURL string, httpClient *http.Client) (*JWKSClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	client := &JWKSClient{
		idpURL:     idpURL,
		httpClient: httpClient,
		keys:       make(map[string]*rsa.PublicKey),
	}

	if err := client.refresh(); err != nil {
		return nil, fmt.Errorf("failed to fetch initial JWKS: %w", err)
	}

	return client, nil
}

// VerifyAndParse verifies a bearer token signature and extracts claims.
// If the key ID is unknown, it refreshes the keys and retries once.
func (c *JWKSClient) VerifyAndParse(token string) (*TokenClaims, error) {
	c.mu.RLock()
	claims, err := verifyJWT(token, c.keys)
	c.mu.RUnlock()

	if err != nil {
		if errors.Is(err, ErrUnknownKeyID) {
			// Refresh keys using singleflight
			_, _, _ = c.sfGroup.Do("refresh", func() (interface{}, error) {
				return nil, c.refresh()
			})

			c.mu.RLock()
			claims, err = verifyJWT(token, c.keys)
			c.mu.RUnlock()

			return claims, err
		}
		return nil, err
	}

	return claims, nil
}

// CheckReachable re-fetches the JWKS to confirm the identity provider is
// reachable right now, not just at startup. Concurrent callers share one fetch.
func (c *JWKSClient) CheckReachable() error {
	_, err, _ := c.sfGroup.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh()
	})
	return err
}

// refresh fetches the JWKS from the identity provider and updates the keys map.
func (c *JWKSClient) refresh() error {
	url := c.idpURL + "/.well-known/jwks.json"

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := parseJWKS(body)
	if err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()

	return nil
}

// SetKeysForTesting sets the cached keys directly. This is only for testing
// purposes to avoid requiring a mock HTTP server for every test.
func (c *JWKSClient) SetKeysForTesting(keys map[string]*rsa.PublicKey) {
	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()
}
