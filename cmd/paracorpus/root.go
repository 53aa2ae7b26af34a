package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/example/paracorpus/internal/config"
	"github.com/example/paracorpus/internal/text"
	"github.com/example/paracorpus/internal/vocab"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
	cfgLoaded bool

	// appFs backs input files and partition outputs.
	appFs afero.Fs = afero.NewOsFs()
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "paracorpus",
		Short:         "Parallel-text corpus preparation filters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			cfgLoaded = true
			setupLogger(cmd.ErrOrStderr(), loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newPartitionCmd(defaults))
	cmd.AddCommand(newEstimateCmd(defaults))
	cmd.AddCommand(newAlignCmd(defaults))

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(w io.Writer, levelStr string) {
	lvl, err := config.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if !cfgLoaded {
		return config.Config{}, errors.New("configuration not loaded")
	}
	return activeCfg, nil
}

func newVocabulary(cfg config.Config) (*vocab.Vocabulary, error) {
	normalize, err := text.NewNormalizer(cfg.Vocab.Normalize)
	if err != nil {
		return nil, err
	}

	return vocab.New(normalize), nil
}
