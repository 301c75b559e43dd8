package cli

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tuannm99/flatsql"
	"github.com/tuannm99/flatsql/internal"
	"github.com/tuannm99/flatsql/internal/logging"
	"github.com/tuannm99/flatsql/internal/shell"
)

// RootOptions holds the flags that are not configuration keys.
type RootOptions struct {
	ConfigFile string
	Command    string
}

// NewRootCommand creates the flatsql command. Without -c it starts the
// interactive shell.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flatsql",
		Short: "flatsql - a tiny SQL shell over JSON files",
		Long: "An interactive SQL-like shell. Every database is a directory and every " +
			"table a pair of JSON documents: <table>.schema.json and <table>.json.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "YAML config file")
	cmd.Flags().StringVarP(&opts.Command, "command", "c", "", "execute one statement and exit")
	internal.RegisterFlags(cmd.Flags())

	return cmd
}

func run(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := internal.LoadConfig(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	defer func() { _ = logger.Sync() }()

	db := flatsql.Open(cfg.Storage.DataDir, logger)

	// one-shot mode
	if strings.TrimSpace(opts.Command) != "" {
		res, err := db.Exec(opts.Command)
		if err != nil {
			return err
		}
		shell.RenderResult(cmd.OutOrStdout(), res)
		return nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 cfg.Shell.Prompt,
		HistoryFile:            cfg.Shell.HistoryFile,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	return shell.New(rl, db, rl.Stdout(), cfg.Shell.Prompt, logger).Run()
}
