// Package config loads the settings shared by the command line tools.
//
// Values are resolved in order: built-in defaults, an optional YAML file, then
// AISEARCH_* environment variables, which may come from a .env file. The
// result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"aisearch/experiments/metrics"
	"aisearch/game"
	"aisearch/planning"
	"aisearch/searcher"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "AISEARCH_"

type Config struct {
	Log        LogConfig        `yaml:"log"`
	MCTS       MCTSConfig       `yaml:"mcts"`
	Planning   PlanningConfig   `yaml:"planning"`
	Book       BookConfig       `yaml:"book"`
	Match      MatchConfig      `yaml:"match"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `yaml:"pretty"`
}

type MCTSConfig struct {
	Iterations  int     `yaml:"iterations" validate:"gte=1"`
	Exploration float64 `yaml:"exploration" validate:"gt=0"`
	Seed        uint64  `yaml:"seed"`
}

type PlanningConfig struct {
	Problem       string `yaml:"problem" validate:"required"`
	Heuristic     string `yaml:"heuristic" validate:"heuristic"`
	Greedy        bool   `yaml:"greedy"`
	Serialize     bool   `yaml:"serialize"`
	IgnoreMutexes bool   `yaml:"ignore_mutexes"`
	CacheSize     int    `yaml:"cache_size" validate:"gte=0"`
}

type BookConfig struct {
	Path     string `yaml:"path" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"in_memory"`
	// Depth of the line added to the book before each decision.
	Depth int `yaml:"depth" validate:"gte=0"`
}

type MatchConfig struct {
	Width       int                   `yaml:"width" validate:"gte=3"`
	Height      int                   `yaml:"height" validate:"gte=3"`
	MoveTimeout time.Duration         `yaml:"move_timeout" validate:"gte=0"`
	MaxMoves    int                   `yaml:"max_moves" validate:"gte=1"`
	Agents      []metrics.AgentConfig `yaml:"agents" validate:"len=2,dive"`
}

type ExperimentConfig struct {
	Name string `yaml:"name" validate:"required"`
	// Games per match up, zero keeps the experiment's own count.
	Games       int    `yaml:"games" validate:"gte=0"`
	Concurrency int    `yaml:"concurrency" validate:"gte=1"`
	OutputDir   string `yaml:"output_dir" validate:"required"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		MCTS: MCTSConfig{
			Iterations:  searcher.DefaultIterations,
			Exploration: searcher.DefaultExploration,
		},
		Planning: PlanningConfig{
			Problem:   "p1",
			Heuristic: "levelsum",
			Serialize: true,
			CacheSize: 4096,
		},
		Book: BookConfig{
			Path:  "data/book",
			Depth: 10,
		},
		Match: MatchConfig{
			Width:       11,
			Height:      9,
			MoveTimeout: time.Second,
			MaxMoves:    500,
			Agents: []metrics.AgentConfig{
				{ID: 1, Kind: "mcts", Iterations: 200, Evaluate: "ratio"},
				{ID: 2, Kind: "alphabeta", Depth: 6, Evaluate: "liberties"},
			},
		},
		Experiment: ExperimentConfig{
			Name:        "baselines",
			Concurrency: 4,
			OutputDir:   "results",
		},
	}
}

// Load reads the YAML file at path, skipped when path is empty, and applies
// environment overrides. envFiles are loaded into the environment first,
// missing ones are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("heuristic", func(fl validator.FieldLevel) bool {
		_, err := planning.HeuristicByName(fl.Field().String())
		return err == nil
	})
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, agent := range c.Match.Agents {
		if _, ok := game.EvaluateByName(agent.Evaluate); !ok {
			return fmt.Errorf("invalid config: unknown evaluation %q for agent %d", agent.Evaluate, agent.ID)
		}
	}
	return nil
}

type lookupEnv func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupEnv) error {
	env := envReader{lookup: lookup}

	env.stringVar("LOG_LEVEL", &c.Log.Level)
	env.boolVar("LOG_PRETTY", &c.Log.Pretty)

	env.intVar("MCTS_ITERATIONS", &c.MCTS.Iterations)
	env.float64Var("MCTS_EXPLORATION", &c.MCTS.Exploration)
	env.uint64Var("MCTS_SEED", &c.MCTS.Seed)

	env.stringVar("PLANNING_PROBLEM", &c.Planning.Problem)
	env.stringVar("PLANNING_HEURISTIC", &c.Planning.Heuristic)
	env.boolVar("PLANNING_GREEDY", &c.Planning.Greedy)
	env.boolVar("PLANNING_SERIALIZE", &c.Planning.Serialize)
	env.boolVar("PLANNING_IGNORE_MUTEXES", &c.Planning.IgnoreMutexes)
	env.intVar("PLANNING_CACHE_SIZE", &c.Planning.CacheSize)

	env.stringVar("BOOK_PATH", &c.Book.Path)
	env.boolVar("BOOK_IN_MEMORY", &c.Book.InMemory)
	env.intVar("BOOK_DEPTH", &c.Book.Depth)

	env.intVar("MATCH_WIDTH", &c.Match.Width)
	env.intVar("MATCH_HEIGHT", &c.Match.Height)
	env.durationVar("MATCH_MOVE_TIMEOUT", &c.Match.MoveTimeout)
	env.intVar("MATCH_MAX_MOVES", &c.Match.MaxMoves)

	env.stringVar("EXPERIMENT_NAME", &c.Experiment.Name)
	env.intVar("EXPERIMENT_GAMES", &c.Experiment.Games)
	env.intVar("EXPERIMENT_CONCURRENCY", &c.Experiment.Concurrency)
	env.stringVar("EXPERIMENT_OUTPUT_DIR", &c.Experiment.OutputDir)

	return errors.Join(env.errs...)
}

// envReader collects parse errors so every bad variable is reported at once.
type envReader struct {
	lookup lookupEnv
	errs   []error
}

func (r *envReader) get(name string) (string, bool) {
	value, ok := r.lookup(EnvPrefix + name)
	return strings.TrimSpace(value), ok && strings.TrimSpace(value) != ""
}

func (r *envReader) fail(name string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err))
}

func (r *envReader) stringVar(name string, out *string) {
	if value, ok := r.get(name); ok {
		*out = value
	}
}

func (r *envReader) boolVar(name string, out *bool) {
	if value, ok := r.get(name); ok {
		v, err := strconv.ParseBool(value)
		if err != nil {
			r.fail(name, err)
			return
		}
		*out = v
	}
}

func (r *envReader) intVar(name string, out *int) {
	if value, ok := r.get(name); ok {
		v, err := strconv.Atoi(value)
		if err != nil {
			r.fail(name, err)
			return
		}
		*out = v
	}
}

func (r *envReader) uint64Var(name string, out *uint64) {
	if value, ok := r.get(name); ok {
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			r.fail(name, err)
			return
		}
		*out = v
	}
}

func (r *envReader) float64Var(name string, out *float64) {
	if value, ok := r.get(name); ok {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			r.fail(name, err)
			return
		}
		*out = v
	}
}

func (r *envReader) durationVar(name string, out *time.Duration) {
	if value, ok := r.get(name); ok {
		v, err := time.ParseDuration(value)
		if err != nil {
			r.fail(name, err)
			return
		}
		*out = v
	}
}
