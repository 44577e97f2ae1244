package main

import (
	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	rb "github.com/sushydev/circular_buffer_go"
	"github.com/sushydev/circular_buffer_go/framer"
)

// fileConfig is the layout of the YAML configuration file. Command-line flags
// that are set explicitly take precedence over it.
//
//	buffer:
//	  capacity: 4096
//	  model: full-utilization
//	  delimiter: '\n'
//	input:
//	  read_size: 512
//	output:
//	  format: json
//	  strip_delimiter: true
//	metrics: true
type fileConfig struct {
	Buffer  bufferConfig `config:"buffer"`
	Input   inputConfig  `config:"input"`
	Output  outputConfig `config:"output"`
	Metrics bool         `config:"metrics"`
}

type bufferConfig struct {
	Capacity  int    `config:"capacity" validate:"min=1"`
	Model     string `config:"model"`
	Delimiter string `config:"delimiter"`
}

type inputConfig struct {
	ReadSize int `config:"read_size" validate:"min=1"`
}

type outputConfig struct {
	Format         string `config:"format"`
	StripDelimiter bool   `config:"strip_delimiter"`
}

func defaultFileConfig() fileConfig {
	defaults := framer.DefaultConfig()

	return fileConfig{
		Buffer: bufferConfig{
			Capacity:  defaults.Capacity,
			Model:     defaults.Model.String(),
			Delimiter: `\n`,
		},
		Input:  inputConfig{ReadSize: defaults.ReadSize},
		Output: outputConfig{Format: "raw"},
	}
}

// Validate is called by ucfg after unpacking.
func (c *fileConfig) Validate() error {
	if _, err := rb.ParseModel(c.Buffer.Model); err != nil {
		return err
	}
	if _, err := framer.ParseDelimiter(c.Buffer.Delimiter); err != nil {
		return err
	}
	return nil
}

// loadFileConfig reads path on top of the defaults.
func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	raw, err := yaml.NewConfigWithFile(path, ucfg.PathSep("."))
	if err != nil {
		return cfg, errors.Wrapf(err, "error loading config file %s", path)
	}
	if err := raw.Unpack(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "error unpacking config file %s", path)
	}

	return cfg, nil
}

// applyFlags copies every explicitly set flag over the file values.
func (c *fileConfig) applyFlags(flags *pflag.FlagSet, values *flagValues) {
	if flags.Changed("capacity") {
		c.Buffer.Capacity = values.capacity
	}
	if flags.Changed("model") {
		c.Buffer.Model = values.model.String()
	}
	if flags.Changed("delimiter") {
		c.Buffer.Delimiter = values.delimiter
	}
	if flags.Changed("read-size") {
		c.Input.ReadSize = values.readSize
	}
	if flags.Changed("format") {
		c.Output.Format = values.format
	}
	if flags.Changed("strip-delimiter") {
		c.Output.StripDelimiter = values.stripDelimiter
	}
	if flags.Changed("metrics") {
		c.Metrics = values.metrics
	}
}

// framerConfig converts the file layout into a framer.Config.
func (c fileConfig) framerConfig() (framer.Config, error) {
	cfg := framer.DefaultConfig()

	model, err := rb.ParseModel(c.Buffer.Model)
	if err != nil {
		return cfg, err
	}
	delimiter, err := framer.ParseDelimiter(c.Buffer.Delimiter)
	if err != nil {
		return cfg, err
	}

	cfg.Capacity = c.Buffer.Capacity
	cfg.Model = model
	cfg.Delimiter = delimiter
	cfg.ReadSize = c.Input.ReadSize
	cfg.StripDelimiter = c.Output.StripDelimiter

	return cfg, cfg.Validate()
}
