package commands

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/codegraph/config"
	"github.com/teranos/codegraph/db"
	"github.com/teranos/codegraph/errors"
	"github.com/teranos/codegraph/graph"
	"github.com/teranos/codegraph/logger"
	"github.com/teranos/codegraph/storage"
)

// openDatabase opens and migrates the index database at the specified
// path. If dbPath is empty, the configured path is used.
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		path, err := config.GetDatabasePath()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get database path")
		}
		if path == "" {
			dbPath = "codegraph.db"
		} else {
			dbPath = path
		}
	}

	database, err := db.Open(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to run migrations on %s", dbPath)
	}

	return database, nil
}

// buildGraph opens the index and constructs the requested view. The
// caller owns the returned database handle.
func buildGraph(cmd *cobra.Command, fileLevel bool) (*graph.DiGraph, *sql.DB, error) {
	database, err := openDatabase(databaseFlag(cmd))
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(database, logger.Logger)
	builder := graph.NewBuilder(store, logger.Logger)

	ctx := context.Background()
	var g *graph.DiGraph
	if fileLevel {
		g, err = builder.BuildFileGraph(ctx)
	} else {
		g, err = builder.BuildSymbolGraph(ctx)
	}
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	return g, database, nil
}

func databaseFlag(cmd *cobra.Command) string {
	path, _ := cmd.Root().PersistentFlags().GetString("database")
	return path
}
