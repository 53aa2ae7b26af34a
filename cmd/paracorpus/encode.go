package main

import (
	"log/slog"
	"time"

	"github.com/example/paracorpus/internal/corpus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file...]",
		Short: "Replace the tokens of tab-separated pairs with first-seen vocabulary IDs",
		Long: `Reads "source<TAB>target" lines from the given files (or stdin) and
writes "ids<TAB>ids" lines to stdout. Both sides share one vocabulary; the
first unseen token gets ID 1, the next 2, and so on. A line without a tab
aborts the run.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			v, err := newVocabulary(cfg)
			if err != nil {
				return err
			}

			in, err := corpus.OpenInputs(appFs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(in))

			start := time.Now()

			stats, err := corpus.NewEncoder(v).RunLines(cmd.Context(), in.Lines(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			slog.Info("encode complete",
				"lines", stats.Lines,
				"vocab_size", stats.VocabSize,
				"ms", time.Since(start).Milliseconds(),
			)

			return nil
		},
	}
}
