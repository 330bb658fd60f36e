package gateway

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrz1836/lexe/internal/lexecrypto"
	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

const (
	// authTokenLifetime is how long a self-signed token stays valid.
	authTokenLifetime = 10 * time.Minute
	// authTokenRefresh renews a cached token this long before it expires.
	authTokenRefresh = time.Minute
)

// Authenticator supplies the bearer token for gateway requests.
type Authenticator interface {
	Token(ctx context.Context) (string, error)
}

// NewAuthenticator builds the authenticator for creds. Root seed credentials
// are reduced to the derived user key here; the seed itself is not kept.
func NewAuthenticator(creds credentials.Ref, audience string, rng io.Reader) (Authenticator, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if seed, ok := creds.RootSeed(); ok {
		key, err := seed.UserKey()
		if err != nil {
			return nil, err
		}
		return NewKeyAuthenticator(key, audience, rng), nil
	}
	cc, _ := creds.ClientCredentials()
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return &ClientAuthenticator{creds: *cc, now: time.Now}, nil
}

// KeyAuthenticator signs short-lived EdDSA tokens with the user key and
// caches them until shortly before expiry.
type KeyAuthenticator struct {
	key      ed25519.PrivateKey
	userPk   types.UserPk
	audience string
	rng      io.Reader
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewKeyAuthenticator takes ownership of key.
func NewKeyAuthenticator(key ed25519.PrivateKey, audience string, rng io.Reader) *KeyAuthenticator {
	var pk types.UserPk
	copy(pk[:], key.Public().(ed25519.PublicKey))
	return &KeyAuthenticator{
		key:      key,
		userPk:   pk,
		audience: audience,
		rng:      lexecrypto.NewLockedReader(rng),
		now:      time.Now,
	}
}

// UserPk returns the public key tokens are issued for.
func (a *KeyAuthenticator) UserPk() types.UserPk {
	return a.userPk
}

// Token returns the cached token or signs a new one.
func (a *KeyAuthenticator) Token(_ context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.token != "" && now.Add(authTokenRefresh).Before(a.expires) {
		return a.token, nil
	}

	nonce, err := lexecrypto.RandomBytes(a.rng, 16)
	if err != nil {
		return "", lexeerr.WithCause(lexeerr.ErrGeneral, err)
	}

	expires := now.Add(authTokenLifetime)
	claims := jwt.RegisteredClaims{
		Subject:   a.userPk.String(),
		Audience:  jwt.ClaimStrings{a.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        hex.EncodeToString(nonce),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(a.key)
	if err != nil {
		return "", lexeerr.WithCause(lexeerr.ErrGeneral, err)
	}

	a.token = token
	a.expires = expires
	return token, nil
}

// ClientAuthenticator presents a client credentials token as is. Expired
// tokens are refused locally.
type ClientAuthenticator struct {
	creds credentials.ClientCredentials
	now   func() time.Time
}

// Token returns the client token.
func (a *ClientAuthenticator) Token(_ context.Context) (string, error) {
	if a.creds.Expired(a.now()) {
		return "", lexeerr.WithSuggestion(lexeerr.ErrCredentialsExpired,
			"export a new set of client credentials from the Lexe app")
	}
	return a.creds.Token, nil
}
