// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, the persistent flags and the startup
// sequence shared by every subcommand: configuration, logging, translations,
// the optional password prompt and opening the store.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/clientbook/internal/config"
	"github.com/toeirei/clientbook/internal/console"
	"github.com/toeirei/clientbook/internal/core"
	"github.com/toeirei/clientbook/internal/db"
	"github.com/toeirei/clientbook/internal/i18n"
	"github.com/toeirei/clientbook/internal/logging"
	"golang.org/x/term"
)

// skipStore marks commands that run without the configured database.
const skipStore = "skip-store"

// openStore is a package-level variable so tests can inject a store.
var openStore = func(ctx context.Context, p db.ConnParams) (db.Store, error) {
	s, err := db.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ensureDatabase is a package-level variable so tests can skip CREATE DATABASE.
var ensureDatabase = db.EnsureDatabase

// readPassword reads a password without echo from the terminal.
var readPassword = func() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	return string(b), err
}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// app holds the state shared by the commands of one root command.
type app struct {
	cfgFile string
	verbose bool
	cfg     config.Config
	store   db.Store
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	cmd, a := newRootCmd()
	err := cmd.Execute()
	// PersistentPostRunE is skipped when a command fails.
	_ = a.close()
	return err
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "clientbook",
		Short: "Clientbook keeps client records and their phone numbers.",
		Long: `Clientbook stores clients (first name, last name, unique email) and any
number of phone numbers per client in SQLite, PostgreSQL or MySQL.

Running without a subcommand will launch the interactive console.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := console.NewForTerminal(a.store, console.ParseMenuStyle(a.cfg.Menu))
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			return describe(c.Run(cmd.Context()))
		},
	}
	cmd.Version = core.ResolveBuildVersion(nil).String()

	a.addPersistentFlags(cmd)

	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newAddPhoneCmd(a),
		newUpdateCmd(a),
		newDeletePhoneCmd(a),
		newDeleteCmd(a),
		newFindCmd(a),
		newShowCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newMigrateCmd(a),
		newDBMaintainCmd(a),
		newDemoCmd(),
		newVersionCmd(),
	)
	return cmd, a
}

func (a *app) addPersistentFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/clientbook/clientbook.yaml)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	f.String("language", d["language"].(string), `Interface language ("en", "ru")`)
	f.String("log_level", d["log_level"].(string), "Log level (debug, info, warn, error)")
	f.String("menu", d["menu"].(string), `Console front end on a terminal ("tui", "prompt")`)
	f.String("database.type", d["database.type"].(string), "Database engine (sqlite, postgres, mysql)")
	f.String("database.dsn", "", "Raw connection string; overrides the other database flags")
	f.String("database.name", d["database.name"].(string), "Database name (postgres, mysql)")
	f.String("database.user", d["database.user"].(string), "Database user (postgres, mysql)")
	f.String("database.password", "", "Database password; prompted for on a terminal when empty")
	f.String("database.host", d["database.host"].(string), "Database host (postgres, mysql)")
	f.Int("database.port", 0, "Database port (0 means the engine default)")
	f.String("database.path", d["database.path"].(string), "SQLite database file")
	f.Bool("database.create", d["database.create"].(bool), "Create the database when it does not exist")
}

// setup loads the configuration and opens the store. Commands annotated with
// skipStore only get configuration, logging and translations.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var explicit *string
	if cmd.Flags().Changed("config") && a.cfgFile != "" {
		if _, err := os.Stat(a.cfgFile); err != nil {
			return fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		explicit = &a.cfgFile
	}

	firstRun := explicit == nil && !config.Exists()
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), explicit)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	logging.SetLevel(cfg.LogLevel)
	if a.verbose {
		logging.SetDebug(true)
	}
	i18n.Init(cfg.Language)

	if firstRun {
		persisted := cfg
		persisted.Database.Password = ""
		if path, err := config.WriteConfigFile(&persisted, false); err != nil {
			logging.Warnf("could not write default config file: %v", err)
		} else {
			logging.Infof("wrote default config to %s", path)
		}
	}

	if cmd.Annotations[skipStore] == "true" {
		return nil
	}
	return a.open(cmd)
}

func (a *app) open(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := a.cfg.ConnParams()
	if p.NeedsPassword() && stdinIsTerminal() {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.password_prompt", p.User))
		pw, err := readPassword()
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("%s", i18n.T("cli.error_read_password", err))
		}
		p.Password = pw
	}

	if a.cfg.Database.Create {
		if err := ensureDatabase(ctx, p); err != nil {
			logging.Warnf("%s", i18n.T("cli.warn_create_database", err))
		}
	}

	s, err := openStore(ctx, p)
	if err != nil {
		return describe(err)
	}
	logging.Debugf("connected to %s", p.Redacted())
	a.store = s
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

// describedError carries a localized message while keeping the cause
// reachable for errors.Is.
type describedError struct {
	msg string
	err error
}

func (e *describedError) Error() string { return e.msg }
func (e *describedError) Unwrap() error { return e.err }

func describe(err error) error {
	if err == nil {
		return nil
	}
	var de *describedError
	if errors.As(err, &de) {
		return err
	}
	return &describedError{msg: console.DescribeError(err), err: err}
}

// formatFlag registers --format on cmd and returns a getter that parses it,
// falling back to the configured default.
func formatFlag(a *app, cmd *cobra.Command) func() (console.Format, error) {
	var value string
	cmd.Flags().StringVar(&value, "format", "", "Output format: "+formatNames())
	return func() (console.Format, error) {
		if value == "" {
			value = a.cfg.Format
		}
		return console.ParseFormat(value)
	}
}

func formatNames() string {
	names := make([]string, len(console.Formats))
	for i, f := range console.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
