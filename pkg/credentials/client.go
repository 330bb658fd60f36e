package credentials

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// ClientCredentials is a revocable bundle issued by the Lexe app. It lets a
// client act for the user without holding the root seed.
type ClientCredentials struct {
	UserPk   types.UserPk `json:"user_pk"`
	ClientID string       `json:"client_id"`
	Token    string       `json:"client_token"`
}

// ParseClientCredentials decodes the base64 JSON blob exported by the app.
// Standard and URL-safe alphabets are accepted, with or without padding.
func ParseClientCredentials(blob string) (*ClientCredentials, error) {
	raw, err := decodeBase64(strings.TrimSpace(blob))
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidClientCredentials, err)
	}

	var cc ClientCredentials
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrInvalidClientCredentials, err)
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return &cc, nil
}

func decodeBase64(s string) ([]byte, error) {
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Validate checks that every field is present and well formed.
func (c *ClientCredentials) Validate() error {
	invalid := func(field string) error {
		return lexeerr.WithDetails(lexeerr.ErrInvalidClientCredentials, map[string]string{"field": field})
	}
	if c.UserPk.IsZero() {
		return invalid("user_pk")
	}
	if _, err := uuid.Parse(c.ClientID); err != nil {
		return invalid("client_id")
	}
	if c.Token == "" {
		return invalid("client_token")
	}
	return nil
}

// ToBase64Blob encodes the bundle in the form ParseClientCredentials reads.
func (c *ClientCredentials) ToBase64Blob() (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ExpiresAt returns the token expiry when the token is a JWT with an exp claim.
// The signature is not checked; only the node can verify it.
func (c *ClientCredentials) ExpiresAt() (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an expiry at or before now.
func (c *ClientCredentials) Expired(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	return ok && !now.Before(exp)
}

// String never prints the token.
func (c *ClientCredentials) String() string {
	return "ClientCredentials(user_pk=" + c.UserPk.String() + ", client_id=" + c.ClientID + ")"
}
