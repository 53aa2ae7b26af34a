package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/paracorpus/internal/config"
	"github.com/example/paracorpus/internal/corpus"
	"github.com/example/paracorpus/internal/partition"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newPartitionCmd(defaults config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition -o TEMPLATE [-n N] [file...]",
		Short: "Split keyed tab-separated records into N files by key mod N",
		Long: `Copies each input line verbatim to one of N files. The bucket is the
integer before the first tab modulo N, taken as a non-negative remainder.
The output template holds one integer placeholder, e.g. part-%03d.tsv.
All N files are created (or truncated) before input is read.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(cfg.Partition.Output) == "" {
				return errors.New("--output is required")
			}

			if cfg.Partition.Count < 1 {
				return fmt.Errorf("--partitions must be at least 1, got %d", cfg.Partition.Count)
			}

			in, err := corpus.OpenInputs(appFs, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(in))

			start := time.Now()

			stats, err := partition.Run(cmd.Context(), appFs, partition.Options{
				Count:    cfg.Partition.Count,
				Template: cfg.Partition.Output,
			}, in.Lines())
			if err != nil {
				return err
			}

			for i, n := range stats.PerBucket {
				slog.Debug("bucket",
					"index", i,
					"path", stats.Paths[i],
					"lines", n,
					"written", humanize.Bytes(uint64(stats.BucketBytes[i])),
				)
			}

			slog.Info("partition complete",
				"lines", stats.Lines,
				"partitions", cfg.Partition.Count,
				"written", humanize.Bytes(uint64(stats.Bytes)),
				"ms", time.Since(start).Milliseconds(),
			)

			return nil
		},
	}

	config.RegisterPartitionFlags(cmd.Flags(), defaults)

	return cmd
}
