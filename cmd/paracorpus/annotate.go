package main

import (
	"log/slog"
	"time"

	"github.com/example/paracorpus/internal/corpus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newAnnotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "annotate [file...]",
		Short: "Encode pairs like encode and prefix each with its input line number",
		Long: `Like encode, but writes "n<TAB>ids<TAB>ids" where n is the 1-based input
line number. Pairs with an empty side are dropped and reported on stderr as
"skipping line n: at least one side is empty".`,
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

			stats, err := corpus.NewAnnotator(v).RunLines(cmd.Context(), in.Lines(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			slog.Info("annotate complete",
				"lines", stats.Lines,
				"emitted", stats.Emitted,
				"skipped", stats.Skipped,
				"vocab_size", stats.VocabSize,
				"ms", time.Since(start).Milliseconds(),
			)

			return nil
		},
	}
}
