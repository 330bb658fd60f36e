package credentials

import (
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// Kind names which variant a credential holds.
type Kind string

// Credential kinds.
const (
	KindRootSeed          Kind = "root_seed"
	KindClientCredentials Kind = "client_credentials"
)

// Credentials owns exactly one of a RootSeed or a ClientCredentials bundle.
type Credentials struct {
	rootSeed *RootSeed
	client   *ClientCredentials
}

// FromRootSeed wraps a root seed.
func FromRootSeed(seed *RootSeed) Credentials {
	return Credentials{rootSeed: seed}
}

// FromClientCredentials wraps a client credentials bundle.
func FromClientCredentials(cc *ClientCredentials) Credentials {
	return Credentials{client: cc}
}

// AsRef borrows the credentials. The Credentials value must outlive every
// call the Ref is passed to.
func (c *Credentials) AsRef() Ref {
	return Ref(*c)
}

// Ref is a borrowed view of Credentials. The wallet reads from it during a
// call and never keeps the secret after the call returns.
type Ref struct {
	rootSeed *RootSeed
	client   *ClientCredentials
}

// RootSeedRef borrows a root seed without building a Credentials value.
func RootSeedRef(seed *RootSeed) Ref {
	return Ref{rootSeed: seed}
}

// Validate checks that exactly one variant is present.
func (r Ref) Validate() error {
	if (r.rootSeed == nil) == (r.client == nil) {
		return lexeerr.ErrMissingCredentials
	}
	return nil
}

// Kind returns the held variant. Call Validate first.
func (r Ref) Kind() Kind {
	if r.rootSeed != nil {
		return KindRootSeed
	}
	return KindClientCredentials
}

// RootSeed returns the root seed, if that is the held variant.
func (r Ref) RootSeed() (*RootSeed, bool) {
	return r.rootSeed, r.rootSeed != nil
}

// ClientCredentials returns the client bundle, if that is the held variant.
func (r Ref) ClientCredentials() (*ClientCredentials, bool) {
	return r.client, r.client != nil
}

// UserPk returns the user the credentials authenticate as.
func (r Ref) UserPk() (types.UserPk, error) {
	if err := r.Validate(); err != nil {
		return types.UserPk{}, err
	}
	if r.rootSeed != nil {
		return r.rootSeed.UserPk()
	}
	if err := r.client.Validate(); err != nil {
		return types.UserPk{}, err
	}
	return r.client.UserPk, nil
}
