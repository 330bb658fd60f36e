package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "LEXE_HOME"
	EnvDataDir      = "LEXE_DATA_DIR"
	EnvDeployEnv    = "LEXE_ENV"
	EnvGatewayURL   = "LEXE_GATEWAY_URL"
	EnvUseSGX       = "LEXE_USE_SGX"
	EnvOutputFormat = "LEXE_OUTPUT_FORMAT"
	EnvVerbose      = "LEXE_VERBOSE"
	EnvLogLevel     = "LEXE_LOG_LEVEL"
	EnvNoColor      = "NO_COLOR"

	// Credential variables. EnvRootSeed wins when both are set.
	EnvRootSeed          = "ROOT_SEED"               // #nosec G101 -- variable name, not a credential
	EnvClientCredentials = "LEXE_CLIENT_CREDENTIALS" // #nosec G101 -- variable name, not a credential
)

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Variables already set are left alone and missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return err
	}
	return nil
}

// ApplyEnvironment applies environment variable overrides to the configuration.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv(EnvDeployEnv); v != "" {
		cfg.Env.DeployEnv = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvGatewayURL); v != "" {
		u := strings.TrimRight(SanitizeURL(v), "/")
		if warning := ValidateGatewayURL(u); warning != "" {
			cfg.Warnings = append(cfg.Warnings, warning)
		}
		cfg.Env.GatewayURL = u
	}

	if v := os.Getenv(EnvUseSGX); v != "" {
		sgx, _ := ParseBool(v)
		cfg.Env.UseSGX = &sgx
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose, _ = ParseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// ParseBool reads a boolean from the environment or a config value. Besides
// the strconv forms it accepts yes/no and on/off, case-insensitively. ok is
// false for anything else, and value is then false.
func ParseBool(s string) (value, ok bool) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "yes", "on":
		return true, true
	case "no", "off":
		return false, true
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided gateway URLs that may contain copy-paste artifacts.
func SanitizeURL(u string) string {
	return sanitize.URL(strings.TrimSpace(u))
}

// ValidateGatewayURL returns a warning for URLs that will not work or that
// send credentials in the clear. Empty means the URL looks fine.
func ValidateGatewayURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "gateway url " + strconv.Quote(raw) + " is not an absolute url"
	}
	switch u.Scheme {
	case "https":
		return ""
	case "http":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return ""
		}
		return "gateway url " + strconv.Quote(raw) + " uses plain http; tokens will be sent unencrypted"
	default:
		return "gateway url " + strconv.Quote(raw) + " must use http or https"
	}
}
