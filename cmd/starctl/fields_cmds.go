package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/gabriel/starfield/internal/config"
	"github.com/gabriel/starfield/internal/database"
	"github.com/gabriel/starfield/internal/fielddefs"
	"github.com/gabriel/starfield/internal/repository"
	"github.com/spf13/cobra"
)

type dbFlags struct {
	sqlitePath     string
	migrationsPath string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sqlitePath, "db", "", "sqlite database path (default SQLITE_PATH)")
	cmd.Flags().StringVar(&f.migrationsPath, "migrations", "", "migrations directory (default embedded)")
}

func (f *dbFlags) open() (*sql.DB, error) {
	path := f.sqlitePath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.SQLitePath
	}

	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.ApplyMigrations(db, f.migrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Manage star field definitions",
	}
	cmd.AddCommand(newFieldsImportCmd(), newFieldsListCmd())
	return cmd
}

func newFieldsImportCmd() *cobra.Command {
	var flags dbFlags

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Load YAML field definitions from a directory into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions, loadErr := fielddefs.LoadFromDir(args[0])
			if loadErr != nil {
				slog.Warn("some field definitions were skipped", "error", loadErr)
			}

			db, err := flags.open()
			if err != nil {
				return err
			}
			defer db.Close()

			saved, err := fielddefs.Sync(repository.NewFieldRepository(db), definitions, slog.Default())
			if _, printErr := fmt.Fprintf(cmd.OutOrStdout(), "imported %d field definitions\n", saved); printErr != nil {
				return printErr
			}
			if err != nil {
				return err
			}
			return loadErr
		},
	}
	flags.register(cmd)
	return cmd
}

func newFieldsListCmd() *cobra.Command {
	var flags dbFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured star fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := flags.open()
			if err != nil {
				return err
			}
			defer db.Close()

			fields, err := repository.NewFieldRepository(db).List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HANDLE\tNAME\tMAX STARS")
			for _, field := range fields {
				fmt.Fprintf(w, "%s\t%s\t%d\n", field.Handle, field.Name, field.MaxStars)
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}
