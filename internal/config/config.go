package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string          `mapstructure:"log_level"`
	Vocab     VocabConfig     `mapstructure:"vocab"`
	Partition PartitionConfig `mapstructure:"partition"`
	Align     AlignConfig     `mapstructure:"align"`
}

type VocabConfig struct {
	Normalize string `mapstructure:"normalize"`
}

type PartitionConfig struct {
	Count  int    `mapstructure:"count"`
	Output string `mapstructure:"output"`
}

// AlignConfig holds the word aligner settings. Reverse is shared with the
// ttable size estimate.
type AlignConfig struct {
	Iterations       int     `mapstructure:"iterations"`
	Reverse          bool    `mapstructure:"reverse"`
	FavorDiagonal    bool    `mapstructure:"favor_diagonal"`
	ProbAlignNull    float64 `mapstructure:"prob_align_null"`
	DiagonalTension  float64 `mapstructure:"diagonal_tension"`
	OptimizeTension  bool    `mapstructure:"optimize_tension"`
	VariationalBayes bool    `mapstructure:"variational_bayes"`
	Alpha            float64 `mapstructure:"alpha"`
	NoNullWord       bool    `mapstructure:"no_null_word"`
	TTableIn         string  `mapstructure:"ttable_in"`
	TTableOut        string  `mapstructure:"ttable_out"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// flagKeys maps config keys to the flag names that override them. A flag is
// bound only when the command being loaded actually defines it.
var flagKeys = []struct {
	key  string
	flag string
}{
	{"log_level", "log-level"},
	{"vocab.normalize", "vocab-normalize"},
	{"partition.count", "partitions"},
	{"partition.output", "output"},
	{"align.iterations", "iterations"},
	{"align.reverse", "reverse"},
	{"align.favor_diagonal", "favor-diagonal"},
	{"align.prob_align_null", "prob-align-null"},
	{"align.diagonal_tension", "diagonal-tension"},
	{"align.optimize_tension", "optimize-tension"},
	{"align.variational_bayes", "variational-bayes"},
	{"align.alpha", "alpha"},
	{"align.no_null_word", "no-null-word"},
	{"align.ttable_in", "ttable-in"},
	{"align.ttable_out", "ttable-out"},
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Vocab: VocabConfig{
			Normalize: "none",
		},
		Partition: PartitionConfig{
			Count:  1,
			Output: "",
		},
		Align: AlignConfig{
			Iterations:       5,
			FavorDiagonal:    true,
			ProbAlignNull:    0.08,
			DiagonalTension:  4.0,
			OptimizeTension:  true,
			VariationalBayes: true,
			Alpha:            0.01,
		},
	}
}

// RegisterFlags registers the flags shared by every subcommand.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	fs.String("vocab-normalize", defaults.Vocab.Normalize, "Unicode normalization applied to tokens (none|nfc|nfkc)")
}

// RegisterPartitionFlags registers the partition subcommand flags.
func RegisterPartitionFlags(fs *pflag.FlagSet, defaults Config) {
	fs.IntP("partitions", "n", defaults.Partition.Count, "Number of partitions")
	fs.StringP("output", "o", defaults.Partition.Output, "Output file name template with one integer placeholder, e.g. part-%03d.tsv")
}

// RegisterEstimateFlags registers the estimate subcommand flags.
func RegisterEstimateFlags(fs *pflag.FlagSet, defaults Config) {
	registerReverseFlag(fs, defaults)
}

// RegisterAlignFlags registers the align subcommand flags.
func RegisterAlignFlags(fs *pflag.FlagSet, defaults Config) {
	a := defaults.Align
	fs.IntP("iterations", "i", a.Iterations, "Number of EM iterations")
	registerReverseFlag(fs, defaults)
	fs.BoolP("favor-diagonal", "d", a.FavorDiagonal, "Prefer alignment points near the diagonal")
	fs.Float64("prob-align-null", a.ProbAlignNull, "Null alignment probability when favoring the diagonal")
	fs.Float64P("diagonal-tension", "T", a.DiagonalTension, "Sharpness of the diagonal preference (<1 flat, >1 sharp)")
	fs.Bool("optimize-tension", a.OptimizeTension, "Re-estimate the diagonal tension after each iteration")
	fs.Bool("variational-bayes", a.VariationalBayes, "Use a variational Bayes estimate under a symmetric Dirichlet prior")
	fs.Float64("alpha", a.Alpha, "Dirichlet prior hyperparameter for variational Bayes")
	fs.BoolP("no-null-word", "N", a.NoNullWord, "Do not generate target words from a null source word")
	fs.String("ttable-in", a.TTableIn, "Start from the translation table in this file")
	fs.String("ttable-out", a.TTableOut, "Write the trained translation table to this file")
}

func registerReverseFlag(fs *pflag.FlagSet, defaults Config) {
	fs.BoolP("reverse", "r", defaults.Align.Reverse, "Swap source and target")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("PARACORPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("paracorpus")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("vocab.normalize", c.Vocab.Normalize)
	v.SetDefault("partition.count", c.Partition.Count)
	v.SetDefault("partition.output", c.Partition.Output)
	v.SetDefault("align.iterations", c.Align.Iterations)
	v.SetDefault("align.reverse", c.Align.Reverse)
	v.SetDefault("align.favor_diagonal", c.Align.FavorDiagonal)
	v.SetDefault("align.prob_align_null", c.Align.ProbAlignNull)
	v.SetDefault("align.diagonal_tension", c.Align.DiagonalTension)
	v.SetDefault("align.optimize_tension", c.Align.OptimizeTension)
	v.SetDefault("align.variational_bayes", c.Align.VariationalBayes)
	v.SetDefault("align.alpha", c.Align.Alpha)
	v.SetDefault("align.no_null_word", c.Align.NoNullWord)
	v.SetDefault("align.ttable_in", c.Align.TTableIn)
	v.SetDefault("align.ttable_out", c.Align.TTableOut)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", fk.flag, err)
		}
	}

	return nil
}
