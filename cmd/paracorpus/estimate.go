package main

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/paracorpus/internal/align"
	"github.com/example/paracorpus/internal/config"
	"github.com/example/paracorpus/internal/corpus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newEstimateCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [-r] [file...]",
		Short: "Estimate the size of the translation table an encoded corpus would train",
		Long: `Reads encoded ("ids<TAB>ids") or annotated ("n<TAB>ids<TAB>ids") pairs
and reports the source and target vocabulary sizes, the number of distinct
co-occurring word pairs and the size of the sparse translation table.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			in, err := corpus.OpenInputs(appFs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(in))

			start := time.Now()

			if cfg.Align.Reverse {
				slog.Info("reversing source and target order")
			}

			est, err := align.EstimateTTable(cmd.Context(), in.Lines(), cfg.Align.Reverse)
			if err != nil {
				return err
			}

			if err := est.WriteReport(cmd.OutOrStdout()); err != nil {
				return err
			}

			slog.Info("estimate complete",
				"ttable", humanize.Bytes(uint64(est.Bytes)),
				"ms", time.Since(start).Milliseconds(),
			)

			return nil
		},
	}

	config.RegisterEstimateFlags(cmd.Flags(), defaults)

	return cmd
}
