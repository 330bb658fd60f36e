package wallet

import (
	"path/filepath"
	"time"

	"github.com/mrz1836/lexe/internal/fileutil"
	"github.com/mrz1836/lexe/pkg/envconfig"
	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

const (
	metadataFile    = "wallet.json"
	paymentsDbDir   = "payments_db"
	metadataVersion = 1
	metadataPerm    = 0o600
)

// metadata is written next to the payments db when a wallet is created.
type metadata struct {
	SchemaVersion int                       `json:"schema_version"`
	UserPk        types.UserPk              `json:"user_pk"`
	EnvID         string                    `json:"env_id"`
	EnvConfig     envconfig.WalletEnvConfig `json:"env_config"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// layout resolves the on-disk paths for one user in one environment:
// <dataDir>/<env id>/<user pk>/{wallet.json,payments_db/}.
type layout struct {
	userDir string
}

func newLayout(dataDir string, user envconfig.WalletUserConfig) layout {
	return layout{userDir: filepath.Join(dataDir, user.EnvConfig.ID(), user.UserPk.String())}
}

func (l layout) metadataPath() string { return filepath.Join(l.userDir, metadataFile) }

func (l layout) paymentsDbDir() string { return filepath.Join(l.userDir, paymentsDbDir) }

func (l layout) writeMetadata(user envconfig.WalletUserConfig) error {
	meta := metadata{
		SchemaVersion: metadataVersion,
		UserPk:        user.UserPk,
		EnvID:         user.EnvConfig.ID(),
		EnvConfig:     user.EnvConfig,
		CreatedAt:     time.Now().UTC(),
	}
	if err := fileutil.WriteJSONAtomic(l.metadataPath(), meta, metadataPerm); err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return nil
}

// readMetadata loads wallet.json and checks it belongs to user.
func (l layout) readMetadata(user envconfig.WalletUserConfig) (*metadata, error) {
	var meta metadata
	if err := fileutil.ReadJSON(l.metadataPath(), &meta); err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreCorrupt, err)
	}

	mismatch := func(field string) error {
		return lexeerr.WithDetails(lexeerr.ErrStoreCorrupt, map[string]string{
			"file":  l.metadataPath(),
			"field": field,
		})
	}
	switch {
	case meta.SchemaVersion != metadataVersion:
		return nil, mismatch("schema_version")
	case meta.UserPk != user.UserPk:
		return nil, mismatch("user_pk")
	case meta.EnvID != user.EnvConfig.ID():
		return nil, mismatch("env_id")
	}
	return &meta, nil
}
