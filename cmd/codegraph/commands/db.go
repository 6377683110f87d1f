package commands

import (
	"context"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/config"
	"github.com/teranos/codegraph/display"
	"github.com/teranos/codegraph/errors"
	"github.com/teranos/codegraph/graph"
	"github.com/teranos/codegraph/logger"
	"github.com/teranos/codegraph/storage"
)

// DbCmd manages the index database.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the index database",
	Long: `Manage the index database: initialize the schema and report index
statistics and graph health.

Examples:
  codegraph db init    # Create or migrate the index schema
  codegraph db stats   # Counts, repository metadata, graph health`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or migrate the index schema",
	RunE:  runDbInit,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics and graph health",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbInitCmd)
	DbCmd.AddCommand(dbStatsCmd)
	dbStatsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runDbInit(cmd *cobra.Command, args []string) error {
	database, err := openDatabase(databaseFlag(cmd))
	if err != nil {
		return err
	}
	defer database.Close()

	// Record which repository this index belongs to
	store := storage.NewStore(database, logger.Logger)
	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "failed to resolve working directory")
	}
	if err := store.StampRepoMeta(context.Background(), cwd); err != nil {
		logger.Logger.Debugw("Not inside a git repository, skipping repo metadata", "error", err)
	}

	pterm.Success.Println("Index schema ready")
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	database, err := openDatabase(databaseFlag(cmd))
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	store := storage.NewStore(database, logger.Logger)
	files, symbols, edges, err := store.Counts(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read index counts")
	}

	stats := map[string]interface{}{
		"database_path": cfg.Database.Path,
		"files":         files,
		"symbols":       symbols,
		"edges":         edges,
	}
	if root, err := store.GetMeta(ctx, storage.MetaRepoRoot); err == nil && root != "" {
		stats["repo_root"] = root
	}
	if head, err := store.GetMeta(ctx, storage.MetaRepoHead); err == nil && head != "" {
		stats["repo_head"] = head
	}

	var health *graph.Metrics
	if symbols > 0 {
		g, err := graph.NewBuilder(store, logger.Logger).BuildSymbolGraph(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to build graph for health summary")
		}
		m := graph.ComputeMetrics(g)
		health = &m
		stats["cycle_count"] = m.CycleCount
		stats["layer_violations"] = m.LayerViolations
		stats["modularity"] = m.Modularity
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(stats)
	}

	pterm.Println("Index Statistics")
	pterm.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	pterm.Printf("Database Path: %s\n", cfg.Database.Path)
	pterm.Printf("Files:         %d\n", files)
	pterm.Printf("Symbols:       %d\n", symbols)
	pterm.Printf("Edges:         %d\n", edges)
	if root, ok := stats["repo_root"]; ok {
		pterm.Printf("Repository:    %s\n", root)
	}
	if head, ok := stats["repo_head"]; ok {
		pterm.Printf("HEAD:          %s\n", head)
	}
	if health != nil {
		pterm.Println("\nGraph Health")
		pterm.Printf("Cycles:        %d\n", health.CycleCount)
		pterm.Printf("Violations:    %d\n", health.LayerViolations)
		pterm.Printf("Modularity:    %.3f\n", health.Modularity)
	}
	return nil
}
