package credentials_test

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lexe/pkg/credentials"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

const (
	zeroSeedHex      = "0000000000000000000000000000000000000000000000000000000000000000"
	testClientID     = "0b7a1c9e-3f64-4d1e-9a53-6a2f0d6c1e77"
	testBackupPasswd = "correct horse battery staple" // gitleaks:allow
)

func zeroMnemonic() string {
	return strings.Repeat("abandon ", 23) + "art"
}

func TestParseRootSeedHex(t *testing.T) {
	t.Parallel()
	seed, err := credentials.ParseRootSeedHex("  " + zeroSeedHex + "\n")
	require.NoError(t, err)
	hexStr, err := seed.Hex()
	require.NoError(t, err)
	assert.Equal(t, zeroSeedHex, hexStr)

	tests := []string{"", "abcd", zeroSeedHex + "00", strings.Repeat("g", 64)}
	for _, in := range tests {
		_, err := credentials.ParseRootSeedHex(in)
		require.ErrorIs(t, err, lexeerr.ErrInvalidRootSeed, "input %q", in)
		assert.Equal(t, lexeerr.KindCredential, lexeerr.KindOf(err))
	}
}

func TestRootSeed_Mnemonic(t *testing.T) {
	t.Parallel()
	seed, err := credentials.ParseRootSeedHex(zeroSeedHex)
	require.NoError(t, err)

	words, err := seed.Mnemonic()
	require.NoError(t, err)
	assert.Equal(t, zeroMnemonic(), words)

	restored, err := credentials.RootSeedFromMnemonic("1. " + strings.ToUpper(words))
	require.NoError(t, err)
	hexStr, err := restored.Hex()
	require.NoError(t, err)
	assert.Equal(t, zeroSeedHex, hexStr)
}

func TestRootSeedFromMnemonic_Errors(t *testing.T) {
	t.Parallel()

	_, err := credentials.RootSeedFromMnemonic("abandon abandon about")
	require.ErrorIs(t, err, lexeerr.ErrInvalidMnemonic)

	typo := "abandn " + strings.Repeat("abandon ", 22) + "art"
	_, err = credentials.RootSeedFromMnemonic(typo)
	require.ErrorIs(t, err, lexeerr.ErrInvalidMnemonic)
	var le *lexeerr.LexeError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Suggestion, "did you mean 'abandon'")

	badChecksum := strings.Repeat("abandon ", 24)
	_, err = credentials.RootSeedFromMnemonic(badChecksum)
	require.ErrorIs(t, err, lexeerr.ErrInvalidMnemonic)
}

func TestSuggestWord(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "abandon", credentials.SuggestWord("abandon"))
	assert.Equal(t, "zoo", credentials.SuggestWord("zo0"))
	assert.Empty(t, credentials.SuggestWord("qqqqqqqqqq"))
}

func TestRootSeed_UserPkIsDeterministic(t *testing.T) {
	t.Parallel()
	a, err := credentials.ParseRootSeedHex(zeroSeedHex)
	require.NoError(t, err)
	b, err := credentials.ParseRootSeedHex(zeroSeedHex)
	require.NoError(t, err)
	other, err := credentials.GenerateRootSeed(bytes.NewReader(bytes.Repeat([]byte{7}, 32)))
	require.NoError(t, err)

	pkA, err := a.UserPk()
	require.NoError(t, err)
	pkB, err := b.UserPk()
	require.NoError(t, err)
	pkOther, err := other.UserPk()
	require.NoError(t, err)

	assert.Equal(t, pkA, pkB)
	assert.NotEqual(t, pkA, pkOther)
	assert.False(t, pkA.IsZero())
}

func TestRootSeed_Destroy(t *testing.T) {
	t.Parallel()
	seed, err := credentials.ParseRootSeedHex(zeroSeedHex)
	require.NoError(t, err)
	seed.Destroy()

	_, err = seed.UserPk()
	require.ErrorIs(t, err, lexeerr.ErrInvalidRootSeed)
	_, err = seed.Bytes()
	require.ErrorIs(t, err, lexeerr.ErrInvalidRootSeed)
	assert.Equal(t, "RootSeed(..)", seed.String())
}

func TestRootSeed_PasswordBackup(t *testing.T) {
	t.Parallel()
	seed, err := credentials.GenerateRootSeed(nil)
	require.NoError(t, err)

	_, err = seed.PasswordEncrypt("short")
	require.ErrorIs(t, err, lexeerr.ErrWeakPassword)

	backup, err := seed.PasswordEncrypt(testBackupPasswd)
	require.NoError(t, err)

	restored, err := credentials.DecryptRootSeed(backup, testBackupPasswd)
	require.NoError(t, err)
	want, err := seed.Hex()
	require.NoError(t, err)
	got, err := restored.Hex()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = credentials.DecryptRootSeed(backup, "the wrong password")
	require.ErrorIs(t, err, lexeerr.ErrDecryptionFailed)
}

func testClientCredentials(t *testing.T, token string) *credentials.ClientCredentials {
	t.Helper()
	pk, err := types.ParseUserPk(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return &credentials.ClientCredentials{UserPk: pk, ClientID: testClientID, Token: token}
}

func TestClientCredentials_RoundTrip(t *testing.T) {
	t.Parallel()
	cc := testClientCredentials(t, "opaque-token")

	blob, err := cc.ToBase64Blob()
	require.NoError(t, err)

	parsed, err := credentials.ParseClientCredentials(blob)
	require.NoError(t, err)
	assert.Equal(t, cc, parsed)

	// Unpadded URL-safe blobs are accepted too.
	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	parsed, err = credentials.ParseClientCredentials(base64.RawURLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, cc, parsed)

	assert.NotContains(t, cc.String(), "opaque-token")
}

func TestParseClientCredentials_Errors(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"not base64":     "%%%",
		"not json":       base64.StdEncoding.EncodeToString([]byte("hello")),
		"missing fields": base64.StdEncoding.EncodeToString([]byte(`{"client_token":"x"}`)),
		"bad client id": base64.StdEncoding.EncodeToString([]byte(
			`{"user_pk":"` + strings.Repeat("ab", 32) + `","client_id":"nope","client_token":"x"}`)),
	}
	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := credentials.ParseClientCredentials(blob)
			require.ErrorIs(t, err, lexeerr.ErrInvalidClientCredentials)
		})
	}
}

func TestClientCredentials_Expiry(t *testing.T) {
	t.Parallel()
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
	}).SignedString([]byte("issuer-secret"))
	require.NoError(t, err)

	expired := testClientCredentials(t, signed)
	exp, ok := expired.ExpiresAt()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(-time.Minute), exp, time.Second)
	assert.True(t, expired.Expired(now))

	opaque := testClientCredentials(t, "not-a-jwt")
	_, ok = opaque.ExpiresAt()
	assert.False(t, ok)
	assert.False(t, opaque.Expired(now))
}

func TestCredentialsRef(t *testing.T) {
	t.Parallel()
	seed, err := credentials.ParseRootSeedHex(zeroSeedHex)
	require.NoError(t, err)

	creds := credentials.FromRootSeed(seed)
	ref := creds.AsRef()
	require.NoError(t, ref.Validate())
	assert.Equal(t, credentials.KindRootSeed, ref.Kind())
	got, ok := ref.RootSeed()
	assert.True(t, ok)
	assert.Same(t, seed, got)
	_, ok = ref.ClientCredentials()
	assert.False(t, ok)

	wantPk, err := seed.UserPk()
	require.NoError(t, err)
	pk, err := ref.UserPk()
	require.NoError(t, err)
	assert.Equal(t, wantPk, pk)

	cc := testClientCredentials(t, "tok")
	clientCreds := credentials.FromClientCredentials(cc)
	ref = clientCreds.AsRef()
	assert.Equal(t, credentials.KindClientCredentials, ref.Kind())
	pk, err = ref.UserPk()
	require.NoError(t, err)
	assert.Equal(t, cc.UserPk, pk)

	var empty credentials.Ref
	require.ErrorIs(t, empty.Validate(), lexeerr.ErrMissingCredentials)
	_, err = empty.UserPk()
	require.ErrorIs(t, err, lexeerr.ErrMissingCredentials)
}
