// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/clientbook/internal/console"
	"github.com/toeirei/clientbook/internal/core"
	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
)

// storeFactory and dbMaintainer are package-level variables so tests can
// replace the real implementations.
var (
	storeFactory = core.DefaultStoreFactory
	dbMaintainer = core.DefaultDBMaintainer
	now          = time.Now
)

// writerReporter prints facade progress lines to a command's output.
type writerReporter struct{ w io.Writer }

func (r writerReporter) Reportf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format+"\n", args...)
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Write a compressed backup of all clients and phones",
		Long: `Exports every client and phone number into a zstd-compressed JSON file.
Without an argument the file is named after today's date.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := core.BackupFilename(now())
			if len(args) > 0 {
				outputFile = args[0]
				if !strings.HasSuffix(outputFile, ".zst") {
					outputFile += ".zst"
				}
			}

			data, err := core.Backup(cmd.Context(), a.store)
			if err != nil {
				return describe(err)
			}

			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("%s", i18n.T("backup.error_create_file", err))
			}
			if err := core.WriteBackup(cmd.Context(), data, f); err != nil {
				_ = f.Close()
				return fmt.Errorf("%s", i18n.T("backup.error_write", err))
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("%s", i18n.T("backup.error_write", err))
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("backup.success", len(data.Clients), len(data.Phones), outputFile))
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore clients and phones from a backup file",
		Long: `Reads a backup written by "clientbook backup".
By default the backup is merged: clients with an email that already exists
are kept and their missing phones are added. With --full the store is wiped
first and the backup becomes its only content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("%s", i18n.T("restore.error_open_file", err))
			}
			defer func() { _ = f.Close() }()

			if err := core.Restore(cmd.Context(), f, core.RestoreOptions{Full: full}, a.store); err != nil {
				return describe(err)
			}
			if full {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.success_full", args[0]))
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.success_integrate", args[0]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Wipe the store before restoring")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	var target db.ConnParams
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all clients and phones into another database",
		Long: `Exports the configured store and imports everything into the target,
replacing what the target held. The target schema is created when missing.`,
		Example: `  clientbook migrate --target-type postgres --target-dsn "postgres://user:pw@localhost/clients_db"
  clientbook migrate --target-type sqlite --target-path ./copy.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.Engine == "" {
				return fmt.Errorf("%s", i18n.T("migrate.error_target_type"))
			}
			if _, err := db.ParseEngine(target.Engine); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("migrate.start", target.Redacted()))
			rep := writerReporter{w: cmd.OutOrStdout()}
			if err := core.Migrate(cmd.Context(), storeFactory, a.store, target, rep); err != nil {
				return describe(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("migrate.success"))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&target.Engine, "target-type", "", "Target database engine (sqlite, postgres, mysql)")
	f.StringVar(&target.DSN, "target-dsn", "", "Target connection string")
	f.StringVar(&target.Path, "target-path", "", "Target sqlite file")
	f.StringVar(&target.Name, "target-name", "", "Target database name")
	f.StringVar(&target.User, "target-user", "", "Target database user")
	f.StringVar(&target.Password, "target-password", "", "Target database password")
	f.StringVar(&target.Host, "target-host", "", "Target database host")
	f.IntVar(&target.Port, "target-port", 0, "Target database port")
	return cmd
}

func newDBMaintainCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "db-maintain",
		Short: "Run engine-specific database maintenance",
		Long: `Runs maintenance for the configured engine. SQLite gets PRAGMA optimize,
VACUUM, a WAL checkpoint and an integrity check. Postgres gets VACUUM ANALYZE
and MySQL gets OPTIMIZE TABLE on both tables.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.cfg.ConnParams()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("maintain.start", p.Redacted()))
			if err := core.RunDBMaintenance(cmd.Context(), dbMaintainer, p, core.DBMaintenanceOptions{Timeout: timeout}); err != nil {
				return describe(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("maintain.success"))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Maximum duration of the maintenance run")
	return cmd
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "demo",
		Short:       "Run every operation against a throwaway in-memory database",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return describe(console.RunDemo(cmd.Context(), cmd.OutOrStdout()))
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := core.ResolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "clientbook %s\n", v.Version)
			_, _ = fmt.Fprintf(out, "commit: %s\n", v.Commit)
			if v.Date != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", v.Date)
			}
			return nil
		},
	}
}
