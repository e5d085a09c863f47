package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-cvbuilder/config"
)

// cliState is shared by the subcommands once the root has loaded config.
type cliState struct {
	configPath string
	cfg        config.Config
	logger     slogLogger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}
	root := &cobra.Command{
		Use:           "cvbuilder",
		Short:         "Build, preview and export CVs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configPath, bindFlags(cmd))
			if err != nil {
				return err
			}
			state.cfg = cfg
			state.logger = newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&state.configPath, "config", "", "config file (YAML); CVBUILDER_* env vars override it")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("storage-driver", "", "document storage (memory, fs, sqlite, postgres)")
	flags.String("storage-root", "", "directory for the fs driver and exported PDFs")
	flags.String("storage-dsn", "", "sqlite or postgres DSN")

	root.AddCommand(
		newServeCmd(state),
		newRenderCmd(state),
		newValidateCmd(state),
	)
	return root
}

var persistentFlagKeys = map[string]string{
	"log-level":      "log.level",
	"storage-driver": "storage.driver",
	"storage-root":   "storage.root",
	"storage-dsn":    "storage.dsn",
	"addr":           "server.addr",
	"document":       "storage.document_id",
	"engine":         "pdf.engine",
}

// bindFlags binds the flags the user actually set, so unset flags never
// shadow file or environment values.
func bindFlags(cmd *cobra.Command) config.Option {
	return func(v *viper.Viper) error {
		for name, key := range persistentFlagKeys {
			flag := cmd.Flags().Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
		return nil
	}
}
