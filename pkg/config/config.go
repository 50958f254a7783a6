package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/circuit"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/solver"
	"github.com/edp1096/intensity/pkg/util"
)

// validate is a singleton validator instance
var validate = validator.New()

// Config holds every tunable of a solve. The zero-config behavior is
// Default().
type Config struct {
	Disconnected string  `yaml:"disconnected" validate:"oneof=reject float"`
	SourceModel  string  `yaml:"sources" validate:"oneof=clamp series"`
	Backend      string  `yaml:"backend" validate:"oneof=dense sparse"`
	Format       string  `yaml:"format" validate:"oneof=plain arrow"`
	Precision    int     `yaml:"precision" validate:"min=1,max=17"`
	PivotEpsilon float64 `yaml:"pivot_epsilon" validate:"gt=0,lt=1"`
	LogLevel     string  `yaml:"log_level" validate:"oneof=debug info warn error"`
}

func Default() *Config {
	return &Config{
		Disconnected: string(circuit.Reject),
		SourceModel:  string(circuit.Clamp),
		Backend:      string(matrix.Dense),
		Format:       string(util.Plain),
		Precision:    consts.CurrentPrecision,
		PivotEpsilon: consts.PivotEpsilon,
		LogLevel:     "warn",
	}
}

// Load reads a YAML config file on top of the defaults. Keys missing from
// the file keep their default value; unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Options converts the config into solver options.
func (c *Config) Options(logger *slog.Logger) solver.Options {
	return solver.Options{
		Policy:    circuit.DisconnectedPolicy(c.Disconnected),
		Model:     circuit.SourceModel(c.SourceModel),
		Backend:   matrix.Backend(c.Backend),
		Eps:       c.PivotEpsilon,
		Format:    util.LineStyle(c.Format),
		Precision: c.Precision,
		Logger:    logger,
	}
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failing field
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, param, e.Value())
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
