package config

import "github.com/caarlos0/env/v11"

// Bootstrap is parsed from the process environment on every start,
// before queuectl_config.json necessarily exists — it only decides
// where the data directory and the database file live, never the
// tunables inside them. The JSON file remains the sole persistent form
// of the tunables themselves (spec.md §9): these variables never
// override a config value, only the file locations.
type Bootstrap struct {
	DataDir string `env:"QUEUECTL_DATA_DIR"`
	DBPath  string `env:"QUEUECTL_DB_PATH"`
}

// LoadBootstrap reads QUEUECTL_DATA_DIR / QUEUECTL_DB_PATH from the
// environment, the same struct-tag-driven parser SirClappington-enq
// uses for its own service configuration.
func LoadBootstrap() (Bootstrap, error) {
	var b Bootstrap
	if err := env.Parse(&b); err != nil {
		return Bootstrap{}, err
	}
	return b, nil
}
