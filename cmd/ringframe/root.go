package main

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	rb "github.com/sushydev/circular_buffer_go"
	"github.com/sushydev/circular_buffer_go/framer"
)

type flagValues struct {
	configPath string

	capacity       int
	model          modelVar
	delimiter      string
	readSize       int
	format         string
	stripDelimiter bool
	metrics        bool

	logLevel  string
	logFormat string
}

// modelVar adapts rb.Model to pflag.Value.
type modelVar struct {
	model rb.Model
}

func (v *modelVar) Set(in string) error {
	model, err := rb.ParseModel(in)
	if err != nil {
		return err
	}
	v.model = model
	return nil
}

func (v *modelVar) Type() string {
	return "model"
}

func (v *modelVar) String() string {
	return v.model.String()
}

// newRootCommand returns the ringframe command. The root command frames its
// input; the limits subcommand describes the buffer models.
func newRootCommand() *cobra.Command {
	defaults := defaultFileConfig()
	values := &flagValues{}

	rootCommand := &cobra.Command{
		Use:   "ringframe [flags] [input]",
		Short: "Split a byte stream into delimited frames",
		Long: "ringframe reads a byte stream from a file or stdin, buffers it in a fixed-size\n" +
			"ring buffer and writes every delimiter-terminated message as a frame.\n" +
			"Messages longer than the buffer capacity are dropped.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFramer(cmd, args, values)
		},
	}

	flags := rootCommand.Flags()
	flags.StringVarP(&values.configPath, "config", "c", "", "YAML configuration file")
	flags.IntVar(&values.capacity, "capacity", defaults.Buffer.Capacity, "Ring buffer capacity in bytes, the longest message that can be framed")
	flags.Var(&values.model, "model", "Buffer index model: capacity-plus-one or full-utilization")
	flags.StringVarP(&values.delimiter, "delimiter", "d", defaults.Buffer.Delimiter, `Message delimiter: a number ("10", "0x0a"), an escape ("\n") or a single character`)
	flags.IntVar(&values.readSize, "read-size", defaults.Input.ReadSize, "Bytes requested per read from the input")
	flags.StringVarP(&values.format, "format", "f", defaults.Output.Format, "Output format: raw, hex, json or cbor")
	flags.BoolVar(&values.stripDelimiter, "strip-delimiter", defaults.Output.StripDelimiter, "Remove the delimiter from emitted frames")
	flags.BoolVar(&values.metrics, "metrics", defaults.Metrics, "Print Prometheus metrics to stderr on exit")

	rootCommand.PersistentFlags().StringVar(&values.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	rootCommand.PersistentFlags().StringVar(&values.logFormat, "log-format", "console", "Log encoding: console or json")

	rootCommand.AddCommand(newLimitsCommand())

	return rootCommand
}

func runFramer(cmd *cobra.Command, args []string, values *flagValues) error {
	logger, err := newLogger(values.logLevel, values.logFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	fileCfg := defaultFileConfig()
	if values.configPath != "" {
		if fileCfg, err = loadFileConfig(values.configPath); err != nil {
			return err
		}
	}
	fileCfg.applyFlags(cmd.Flags(), values)

	cfg, err := fileCfg.framerConfig()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	var registry *prometheus.Registry
	if fileCfg.Metrics {
		registry = prometheus.NewRegistry()
		cfg.Registerer = registry
		cfg.MetricsName = "ringframe"
	}

	input, name, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer input.Close()

	encoder, err := framer.NewEncoder(fileCfg.Output.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	f, err := framer.New(input, cfg, logger.Named("framer"))
	if err != nil {
		return err
	}

	logger.Debug("Framing input",
		zap.String("input", name),
		zap.Stringer("model", cfg.Model),
		zap.String("capacity", humanize.IBytes(uint64(cfg.Capacity))),
		zap.Uint8("delimiter", cfg.Delimiter),
	)

	runErr := f.Run(cmd.Context(), encoder.Encode)

	stats := f.Stats()
	logger.Info("Framing finished",
		zap.String("input", name),
		zap.String("read", humanize.IBytes(stats.BytesRead)),
		zap.String("frames", humanize.Comma(int64(stats.Frames))),
		zap.Uint64("overruns", stats.Overruns),
		zap.Uint64("dropped_bytes", stats.DroppedBytes),
	)

	if registry != nil {
		if err := writeMetrics(cmd.ErrOrStderr(), registry); err != nil {
			return err
		}
	}

	return runErr
}

// openInput returns the named file, or stdin for no argument or "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}

	file, err := os.Open(args[0])
	if err != nil {
		return nil, "", errors.Wrap(err, "open input")
	}
	return file, args[0], nil
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}
