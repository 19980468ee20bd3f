package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/internal/types"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// Manager handles configuration loading and validation
type Manager struct {
	config *types.Config
	path   string
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: getDefaultConfig(),
	}
}

// Load loads configuration from a file. Keys missing from the file keep
// their default values.
func (m *Manager) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	config := getDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	if err := m.applyEnvOverrides(config); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	m.path = path
	return nil
}

// Save saves configuration to a file
func (m *Manager) Save(path string) error {
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *types.Config {
	return m.config
}

// SetConfig updates the configuration
func (m *Manager) SetConfig(config *types.Config) {
	m.config = config
}

// GetPath returns the configuration file path
func (m *Manager) GetPath() string {
	return m.path
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (m *Manager) applyEnvOverrides(config *types.Config) error {
	if v := os.Getenv(constants.EnvPopulationSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.EnvPopulationSize, v, err)
		}
		config.Engine.PopulationSize = n
	}
	if v := os.Getenv(constants.EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.EnvSeed, v, err)
		}
		config.Engine.Seed = n
	}
	if v := os.Getenv(constants.EnvMaxGenerations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.EnvMaxGenerations, v, err)
		}
		config.Limits.MaxGenerations = n
	}
	if v := os.Getenv(constants.EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(constants.EnvEvaluatorMode); v != "" {
		config.Evaluator.Mode = v
	}
	if v := os.Getenv(constants.EnvCheckpointDir); v != "" {
		config.Checkpoint.Dir = v
	}

	return nil
}

// Validate reports every violated rule of config at once.
func Validate(config *types.Config) error {
	var rules core.Rules
	rules.Struct(config)

	for _, sel := range []struct {
		name string
		cfg  types.SelectorConfig
	}{
		{"parents", config.Selection.Parents},
		{"survivors", config.Selection.Survivors},
	} {
		if sel.cfg.Kind == constants.SelectorTournament {
			rules.Check(sel.cfg.TournamentSize >= 1,
				"selection.%s.tournament_size must be at least 1 for tournament selection (got %d)", sel.name, sel.cfg.TournamentSize)
		}
	}

	if config.Crossover.Enabled {
		parents := int(math.Round(float64(config.Engine.PopulationSize) * (1 - config.Engine.SurvivalRate)))
		rules.Check(parents == 0 || config.Crossover.NumParents <= parents,
			"crossover.num_parents %d exceeds the %d parents selected per generation", config.Crossover.NumParents, parents)
	}

	limits := config.Limits
	rules.Check(limits.MaxGenerations > 0 || limits.TargetFitness != nil || limits.SteadyGenerations > 0 || limits.TimeLimit > 0,
		"at least one limit is required: max_generations, target_fitness, steady_generations or time_limit")

	if config.Checkpoint.Resume {
		rules.Check(config.Checkpoint.Dir != "", "checkpoint.resume requires checkpoint.dir")
	}

	return rules.Err("genevo")
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *types.Config {
	return &types.Config{
		Engine: types.EngineConfig{
			PopulationSize:    constants.DefaultPopulationSize,
			SurvivalRate:      constants.DefaultSurvivalRate,
			Seed:              constants.DefaultSeed,
			EqualityThreshold: constants.DefaultEqualityThreshold,
			Ranker:            constants.DefaultRanker,
		},
		Selection: types.SelectionConfig{
			Parents: types.SelectorConfig{
				Kind:           constants.SelectorTournament,
				TournamentSize: constants.DefaultTournamentSize,
			},
			Survivors: types.SelectorConfig{
				Kind:           constants.SelectorTournament,
				TournamentSize: constants.DefaultTournamentSize,
			},
		},
		Crossover: types.CrossoverConfig{
			Enabled:        true,
			NumParents:     constants.DefaultNumParents,
			NumOffspring:   constants.DefaultNumOffspring,
			ChromosomeRate: constants.DefaultChromosomeRate,
		},
		Mutation: types.MutationConfig{
			IndividualRate: constants.DefaultIndividualRate,
			ChromosomeRate: constants.DefaultMutationChromosomeRate,
			GeneRate:       constants.DefaultGeneRate,
		},
		Evaluator: types.EvaluatorConfig{
			Mode:    constants.DefaultEvaluatorMode,
			Workers: constants.DefaultWorkers,
		},
		Limits: types.LimitsConfig{
			MaxGenerations: constants.DefaultMaxGenerations,
			TimeLimit:      constants.DefaultTimeLimit,
		},
		Logging: types.LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
		Metrics: types.MetricsConfig{
			Namespace: constants.DefaultMetricsNamespace,
		},
		Checkpoint: types.CheckpointConfig{
			Interval: constants.DefaultCheckpointInterval,
		},
		Problem: types.ProblemConfig{
			Chromosomes: constants.DefaultChromosomes,
			Genes:       constants.DefaultGenes,
		},
	}
}

// Default returns a fresh copy of the default configuration.
func Default() *types.Config {
	return getDefaultConfig()
}

// CreateDefaultConfig creates a default configuration file
func CreateDefaultConfig(path string) error {
	manager := NewManager()
	return manager.Save(path)
}
