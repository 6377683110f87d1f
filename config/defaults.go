package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "codegraph.db")

	// Graph algorithm defaults
	v.SetDefault("graph.pagerank_damping", 0.85)
	v.SetDefault("graph.pagerank_tolerance", 1e-6)
	v.SetDefault("graph.pagerank_max_iterations", 100)
	v.SetDefault("graph.min_cycle_size", 2) // size-1 self-loops excluded

	// Partition defaults
	v.SetDefault("partition.default_agents", 2)
	v.SetDefault("partition.shared_interface_limit", 15)
}

// BindEnvVars explicitly binds configuration to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "CODEGRAPH_DATABASE_PATH")
}
