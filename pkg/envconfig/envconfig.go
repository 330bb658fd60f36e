// Package envconfig selects which Lexe deployment a wallet talks to.
package envconfig

import (
	"fmt"
	"net/url"
	"strings"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

// DeployEnv is a Lexe deployment environment.
type DeployEnv string

// Deploy environments.
const (
	DeployEnvProd    DeployEnv = "prod"
	DeployEnvStaging DeployEnv = "staging"
	DeployEnvDev     DeployEnv = "dev"
)

// Network is the Bitcoin network a deployment runs on.
type Network string

// Bitcoin networks.
const (
	NetworkMainnet  Network = "mainnet"
	NetworkTestnet3 Network = "testnet3"
	NetworkRegtest  Network = "regtest"
)

// Default gateway endpoints.
const (
	ProdGatewayURL    = "https://gateway.lexe.app"
	StagingGatewayURL = "https://gateway.staging.lexe.app"
	DevGatewayURL     = "https://localhost:4040"
)

// WalletEnvConfig identifies the deployment a wallet belongs to.
type WalletEnvConfig struct {
	DeployEnv  DeployEnv `json:"deploy_env" yaml:"deploy_env"`
	Network    Network   `json:"network" yaml:"network"`
	UseSGX     bool      `json:"use_sgx" yaml:"use_sgx"`
	GatewayURL string    `json:"gateway_url" yaml:"gateway_url"`
}

// Prod returns the production mainnet configuration.
func Prod() WalletEnvConfig {
	return WalletEnvConfig{
		DeployEnv:  DeployEnvProd,
		Network:    NetworkMainnet,
		UseSGX:     true,
		GatewayURL: ProdGatewayURL,
	}
}

// Staging returns the staging testnet configuration.
func Staging() WalletEnvConfig {
	return WalletEnvConfig{
		DeployEnv:  DeployEnvStaging,
		Network:    NetworkTestnet3,
		UseSGX:     true,
		GatewayURL: StagingGatewayURL,
	}
}

// Dev returns a regtest configuration for local development.
// A nil gatewayURL selects DevGatewayURL.
func Dev(useSGX bool, gatewayURL *string) WalletEnvConfig {
	cfg := WalletEnvConfig{
		DeployEnv:  DeployEnvDev,
		Network:    NetworkRegtest,
		UseSGX:     useSGX,
		GatewayURL: DevGatewayURL,
	}
	if gatewayURL != nil && *gatewayURL != "" {
		cfg.GatewayURL = strings.TrimSuffix(*gatewayURL, "/")
	}
	return cfg
}

// ParseDeployEnv maps a name to its default configuration.
func ParseDeployEnv(s string) (WalletEnvConfig, error) {
	switch DeployEnv(strings.ToLower(strings.TrimSpace(s))) {
	case DeployEnvProd, "":
		return Prod(), nil
	case DeployEnvStaging:
		return Staging(), nil
	case DeployEnvDev:
		return Dev(false, nil), nil
	default:
		return WalletEnvConfig{}, lexeerr.WithSuggestion(
			lexeerr.WithDetails(lexeerr.ErrConfigInvalid, map[string]string{"env": s}),
			"use one of: prod, staging, dev",
		)
	}
}

// Validate checks that the combination is one Lexe actually deploys.
func (c WalletEnvConfig) Validate() error {
	invalid := func(reason string) error {
		return lexeerr.WithDetails(lexeerr.ErrConfigInvalid, map[string]string{
			"env":    string(c.DeployEnv),
			"reason": reason,
		})
	}

	switch c.DeployEnv {
	case DeployEnvProd:
		if c.Network != NetworkMainnet || !c.UseSGX {
			return invalid("prod requires mainnet and sgx")
		}
	case DeployEnvStaging:
		if c.Network != NetworkTestnet3 || !c.UseSGX {
			return invalid("staging requires testnet3 and sgx")
		}
	case DeployEnvDev:
		if c.Network != NetworkRegtest && c.Network != NetworkTestnet3 {
			return invalid("dev requires regtest or testnet3")
		}
	default:
		return invalid("unknown deploy env")
	}

	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return invalid("gateway url must be an absolute http(s) url")
	}
	if u.Scheme == "http" && c.DeployEnv != DeployEnvDev {
		return invalid("plain http is only allowed in dev")
	}
	return nil
}

// ID names the environment in data directory paths, e.g. "prod-mainnet-sgx".
func (c WalletEnvConfig) ID() string {
	sgx := "dbg"
	if c.UseSGX {
		sgx = "sgx"
	}
	return fmt.Sprintf("%s-%s-%s", c.DeployEnv, c.Network, sgx)
}

// WalletUserConfig ties a user to an environment.
type WalletUserConfig struct {
	UserPk    types.UserPk    `json:"user_pk"`
	EnvConfig WalletEnvConfig `json:"env_config"`
}
