// Package config provides codegraph configuration loaded via Viper.
//
// Configuration is merged from, in precedence order (lowest to highest):
// user config (~/.config/codegraph/config.toml), project config
// (codegraph.toml found by walking up from the working directory), and
// CODEGRAPH_* environment variables.
package config

// Config represents the codegraph configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" toml:"database"`
	Graph     GraphConfig     `mapstructure:"graph" toml:"graph"`
	Partition PartitionConfig `mapstructure:"partition" toml:"partition"`
}

// DatabaseConfig configures the SQLite index database
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path"`
}

// GraphConfig configures graph algorithm parameters.
// These affect ranking quality only, never correctness; the defaults are
// the standard literature values and rarely need changing.
type GraphConfig struct {
	PageRankDamping       float64 `mapstructure:"pagerank_damping" toml:"pagerank_damping"`
	PageRankTolerance     float64 `mapstructure:"pagerank_tolerance" toml:"pagerank_tolerance"`
	PageRankMaxIterations int     `mapstructure:"pagerank_max_iterations" toml:"pagerank_max_iterations"`
	MinCycleSize          int     `mapstructure:"min_cycle_size" toml:"min_cycle_size"`
}

// PartitionConfig configures multi-agent workload partitioning
type PartitionConfig struct {
	DefaultAgents        int `mapstructure:"default_agents" toml:"default_agents"`
	SharedInterfaceLimit int `mapstructure:"shared_interface_limit" toml:"shared_interface_limit"`
}

// GetDatabasePath returns the configured database path
func GetDatabasePath() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.Path, nil
}
