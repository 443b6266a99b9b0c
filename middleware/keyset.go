package middleware

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"expensetracker/logger"
)

const minKeySetRefreshInterval = time.Minute

// KeySet is a process-wide cache of RSA public keys fetched from a remote
// JWKS endpoint. Refreshes are rate limited; a rotated key is picked up on
// the next allowed fetch, not immediately.
type KeySet struct {
	url             string
	refreshInterval time.Duration
	client          *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	lastFetch time.Time
}

// NewKeySet creates a key set cache for the given JWKS URL. refreshInterval
// bounds how often the endpoint is re-fetched.
func NewKeySet(url string, refreshInterval time.Duration) *KeySet {
	if refreshInterval < minKeySetRefreshInterval {
		refreshInterval = minKeySetRefreshInterval
	}
	return &KeySet{
		url:             url,
		refreshInterval: refreshInterval,
		client:          &http.Client{Timeout: 10 * time.Second},
		keys:            make(map[string]*rsa.PublicKey),
	}
}

// Key returns the public key for the given key id, fetching the remote set
// when the key is unknown and the rate limit allows another fetch.
func (k *KeySet) Key(kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.keys[kid]
	stale := time.Since(k.lastFetch) >= k.refreshInterval
	k.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}

	if err := k.refresh(); err != nil {
		if ok {
			// Serve the cached key when the endpoint is unreachable.
			return key, nil
		}
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok = k.keys[kid]
	if !ok {
		return nil, fmt.Errorf("signing key %q not found in key set", kid)
	}
	return key, nil
}

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// refresh re-fetches the key set, honoring the rate limit. Concurrent
// callers serialize on the write lock; whoever arrives after a fresh fetch
// returns without another round trip.
func (k *KeySet) refresh() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if time.Since(k.lastFetch) < k.refreshInterval && len(k.keys) > 0 {
		return nil
	}

	resp, err := k.client.Get(k.url)
	if err != nil {
		return fmt.Errorf("fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch key set: unexpected status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode key set: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		key, err := jwk.publicKey()
		if err != nil {
			logger.Warn("skipping unparsable key in key set",
				zap.String("kid", jwk.Kid), zap.Error(err))
			continue
		}
		keys[jwk.Kid] = key
	}

	k.keys = keys
	k.lastFetch = time.Now()
	logger.Info("refreshed signing key set", zap.Int("keys", len(keys)))
	return nil
}

// publicKey decodes the base64url modulus and exponent of an RSA JWK.
func (j jwkKey) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, fmt.Errorf("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
