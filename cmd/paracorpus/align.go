package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/paracorpus/internal/align"
	"github.com/example/paracorpus/internal/config"
	"github.com/example/paracorpus/internal/corpus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newAlignCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align [flags] [file...]",
		Short: "Train an IBM Model 1 aligner and print Viterbi word alignments",
		Long: `Reads annotated ("n<TAB>ids<TAB>ids") or encoded ("ids<TAB>ids") pairs,
runs the configured number of EM iterations and writes one
"n<TAB>i-j i-j ..." line per pair, where i is a 0-based source position
and j a 0-based target position. Target words best explained by the null
word are left unaligned. Encoded pairs are numbered by input line.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if cfg.Align.Iterations < 0 {
				return fmt.Errorf("--iterations must not be negative, got %d", cfg.Align.Iterations)
			}

			table, err := loadTTable(appFs, cfg.Align.TTableIn)
			if err != nil {
				return err
			}

			model, err := align.NewModel(alignOptions(cfg.Align), table)
			if err != nil {
				return err
			}

			in, err := corpus.OpenInputs(appFs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(in))

			start := time.Now()

			pairs, err := align.ReadPairs(cmd.Context(), in.Lines())
			if err != nil {
				return err
			}

			for i := 1; i <= cfg.Align.Iterations; i++ {
				stats, err := model.Iterate(cmd.Context(), pairs)
				if err != nil {
					return err
				}

				slog.Info("iteration",
					"n", i,
					"pairs", stats.Pairs,
					"skipped", stats.Skipped,
					"cross_entropy", stats.CrossEntropy(),
					"perplexity", stats.Perplexity(),
					"align_feature", stats.AlignFeature,
					"tension", stats.Tension,
					"ttable_entries", stats.Entries,
				)
			}

			if err := saveTTable(appFs, cfg.Align.TTableOut, model.Table()); err != nil {
				return err
			}

			if err := model.WriteAlignments(cmd.Context(), cmd.OutOrStdout(), pairs); err != nil {
				return err
			}

			slog.Info("align complete",
				"pairs", len(pairs),
				"iterations", cfg.Align.Iterations,
				"ms", time.Since(start).Milliseconds(),
			)

			return nil
		},
	}

	config.RegisterAlignFlags(cmd.Flags(), defaults)

	return cmd
}

func alignOptions(c config.AlignConfig) align.Options {
	return align.Options{
		Reverse:          c.Reverse,
		FavorDiagonal:    c.FavorDiagonal,
		ProbAlignNull:    c.ProbAlignNull,
		DiagonalTension:  c.DiagonalTension,
		OptimizeTension:  c.OptimizeTension,
		VariationalBayes: c.VariationalBayes,
		Alpha:            c.Alpha,
		NoNullWord:       c.NoNullWord,
	}
}

// loadTTable returns nil when path is empty so training starts from the
// uniform table.
func loadTTable(fs afero.Fs, path string) (table *align.TTable, err error) {
	if path == "" {
		return nil, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ttable: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	table, err = align.ReadTTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("ttable loaded", "path", path, "entries", table.Len())

	return table, nil
}

func saveTTable(fs afero.Fs, path string, table *align.TTable) (err error) {
	if path == "" {
		return nil
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create ttable: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if err := table.Dump(f); err != nil {
		return err
	}

	if info, statErr := f.Stat(); statErr == nil {
		slog.Debug("ttable written", "path", path, "entries", table.Len(), "size", humanize.Bytes(uint64(info.Size())))
	}

	return nil
}
