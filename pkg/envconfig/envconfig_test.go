package envconfig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	prod := envconfig.Prod()
	require.NoError(t, prod.Validate())
	assert.Equal(t, "prod-mainnet-sgx", prod.ID())
	assert.Equal(t, envconfig.ProdGatewayURL, prod.GatewayURL)

	staging := envconfig.Staging()
	require.NoError(t, staging.Validate())
	assert.Equal(t, "staging-testnet3-sgx", staging.ID())

	dev := envconfig.Dev(false, nil)
	require.NoError(t, dev.Validate())
	assert.Equal(t, "dev-regtest-dbg", dev.ID())
	assert.Equal(t, envconfig.DevGatewayURL, dev.GatewayURL)

	custom := "http://127.0.0.1:9000/"
	dev = envconfig.Dev(true, &custom)
	require.NoError(t, dev.Validate())
	assert.Equal(t, "http://127.0.0.1:9000", dev.GatewayURL)
	assert.True(t, dev.UseSGX)
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  envconfig.WalletEnvConfig
	}{
		{"prod on regtest", envconfig.WalletEnvConfig{DeployEnv: envconfig.DeployEnvProd, Network: envconfig.NetworkRegtest, UseSGX: true, GatewayURL: envconfig.ProdGatewayURL}},
		{"prod without sgx", envconfig.WalletEnvConfig{DeployEnv: envconfig.DeployEnvProd, Network: envconfig.NetworkMainnet, GatewayURL: envconfig.ProdGatewayURL}},
		{"unknown env", envconfig.WalletEnvConfig{DeployEnv: "qa", Network: envconfig.NetworkRegtest, GatewayURL: envconfig.DevGatewayURL}},
		{"relative url", envconfig.WalletEnvConfig{DeployEnv: envconfig.DeployEnvDev, Network: envconfig.NetworkRegtest, GatewayURL: "localhost"}},
		{"http in staging", envconfig.WalletEnvConfig{DeployEnv: envconfig.DeployEnvStaging, Network: envconfig.NetworkTestnet3, UseSGX: true, GatewayURL: "http://gateway.staging.lexe.app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.cfg.Validate(), lexeerr.ErrConfigInvalid)
		})
	}
}

func TestParseDeployEnv(t *testing.T) {
	t.Parallel()
	cfg, err := envconfig.ParseDeployEnv("STAGING")
	require.NoError(t, err)
	assert.Equal(t, envconfig.Staging(), cfg)

	cfg, err = envconfig.ParseDeployEnv("")
	require.NoError(t, err)
	assert.Equal(t, envconfig.Prod(), cfg)

	_, err = envconfig.ParseDeployEnv("mainnet")
	require.ErrorIs(t, err, lexeerr.ErrConfigInvalid)
}
