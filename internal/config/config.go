// Package config loads run settings for the qgrover command from YAML.
package config

import (
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qgrover/grover"
	"qgrover/problems/cnf"
)

// OptimalIterations asks the command to derive the iteration count from the
// number of solutions.
const OptimalIterations = -1

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return grover.ValidLabel(fl.Field().String())
		})
	})
	return validate
}

// Config is the top-level file layout.
type Config struct {
	Shots      int     `yaml:"shots" validate:"gte=1,lte=1000000"`
	Iterations int     `yaml:"iterations" validate:"gte=-1"`
	Seed       *uint64 `yaml:"seed,omitempty"`
	Workers    int     `yaml:"workers" validate:"gte=1,lte=64"`
	LogLevel   string  `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile    string  `yaml:"log_file,omitempty"`
	Problem    Problem `yaml:"problem"`
}

// Problem is a CNF formula spelled as literal strings, "!" negating.
type Problem struct {
	Variables []string   `yaml:"variables" validate:"required,min=1,dive,required,ident"`
	Clauses   [][]string `yaml:"clauses" validate:"required,min=1,dive,min=1,dive,required"`
}

// Default returns the settings used when no file is given: the two-variable
// conjunction a AND b.
func Default() Config {
	return Config{
		Shots:      1024,
		Iterations: OptimalIterations,
		Workers:    4,
		LogLevel:   "info",
		Problem: Problem{
			Variables: []string{"a", "b"},
			Clauses:   [][]string{{"a"}, {"b"}},
		},
	}
}

// Load reads path over the defaults and validates the result. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	// a problem section replaces the default formula as a whole
	var section struct {
		Problem *Problem `yaml:"problem"`
	}
	if err := yaml.Unmarshal(data, &section); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if section.Problem != nil {
		cfg.Problem = *section.Problem
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	if _, err := cfg.Formula(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	return validatorInstance().Struct(c)
}

// Formula converts the problem section into a validated CNF formula.
func (c *Config) Formula() (cnf.Formula, error) {
	clauses, err := cnf.ParseClauses(c.Problem.Clauses)
	if err != nil {
		return cnf.Formula{}, err
	}
	f := cnf.Formula{Variables: c.Problem.Variables, Clauses: clauses}
	if err := f.Validate(); err != nil {
		return cnf.Formula{}, err
	}
	return f, nil
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
