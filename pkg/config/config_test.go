package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/internal/types"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
)

// clearEnv blanks every override so the host environment cannot leak into a
// test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		constants.EnvPopulationSize,
		constants.EnvSeed,
		constants.EnvMaxGenerations,
		constants.EnvLogLevel,
		constants.EnvEvaluatorMode,
		constants.EnvCheckpointDir,
	} {
		t.Setenv(k, "")
	}
}

func TestNewManager(t *testing.T) {
	manager := NewManager()
	assert.NotNil(t, manager)
	assert.NotNil(t, manager.config)
	assert.Empty(t, manager.path)
	assert.Equal(t, constants.DefaultPopulationSize, manager.GetConfig().Engine.PopulationSize)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, Validate(getDefaultConfig()))
}

func TestLoadAndSave(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	// Test saving a config with every optional field set
	manager := NewManager()
	target := 31.0
	manager.GetConfig().Limits.TargetFitness = &target
	manager.GetConfig().Limits.TimeLimit = 90 * time.Second
	manager.GetConfig().Checkpoint.Dir = "checkpoints"
	require.NoError(t, manager.Save(configPath))

	_, err := os.Stat(configPath)
	require.NoError(t, err)

	newManager := NewManager()
	require.NoError(t, newManager.Load(configPath))

	assert.Equal(t, manager.config, newManager.config)
	assert.Equal(t, configPath, newManager.GetPath())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
engine:
  population_size: 12
limits:
  time_limit: 2m
selection:
  parents:
    kind: roulette
`
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))

	config := manager.GetConfig()
	assert.Equal(t, 12, config.Engine.PopulationSize)
	assert.Equal(t, 2*time.Minute, config.Limits.TimeLimit)
	assert.Equal(t, constants.SelectorRoulette, config.Selection.Parents.Kind)
	assert.Equal(t, constants.DefaultSurvivalRate, config.Engine.SurvivalRate)
	assert.Equal(t, constants.DefaultMaxGenerations, config.Limits.MaxGenerations)
}

func TestLoadNonExistentFile(t *testing.T) {
	manager := NewManager()
	err := manager.Load("/non/existent/file.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid_config.yaml")

	// Write invalid YAML
	err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
	require.NoError(t, err)

	manager := NewManager()
	err = manager.Load(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("engine:\n  survival_rate: 1.5\n"), 0644))

	manager := NewManager()
	err := manager.Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))

	// The manager keeps its previous configuration.
	assert.Equal(t, constants.DefaultSurvivalRate, manager.GetConfig().Engine.SurvivalRate)
	assert.Empty(t, manager.GetPath())
}

func TestValidationReportsEveryRule(t *testing.T) {
	config := getDefaultConfig()
	config.Engine.PopulationSize = 0
	config.Engine.SurvivalRate = -0.1
	config.Engine.Ranker = "best"
	config.Selection.Parents.TournamentSize = 0
	config.Evaluator.Workers = 0
	config.Limits.MaxGenerations = 0

	err := Validate(config)
	var cfgErr *core.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "genevo", cfgErr.Component)
	assert.Contains(t, cfgErr.Violations, "engine.population_size must be greater than 0 (got 0)")
	assert.Contains(t, cfgErr.Violations, "engine.survival_rate must be at least 0 (got -0.1)")
	assert.Contains(t, cfgErr.Violations, "engine.ranker must be one of [max min] (got best)")
	assert.Contains(t, cfgErr.Violations, "evaluator.workers must be at least 1 (got 0)")
	assert.Contains(t, cfgErr.Violations,
		"selection.parents.tournament_size must be at least 1 for tournament selection (got 0)")
	assert.Contains(t, cfgErr.Violations,
		"at least one limit is required: max_generations, target_fitness, steady_generations or time_limit")
	assert.Len(t, cfgErr.Violations, 6)
}

func TestValidationCrossRules(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*types.Config)
		valid  bool
	}{
		{
			name:   "roulette ignores tournament size",
			modify: func(c *types.Config) {
				c.Selection.Survivors.Kind = constants.SelectorRoulette
				c.Selection.Survivors.TournamentSize = 0
			},
			valid: true,
		},
		{
			name:   "too many crossover parents",
			modify: func(c *types.Config) {
				c.Engine.PopulationSize = 4
				c.Engine.SurvivalRate = 0.5
				c.Crossover.NumParents = 3
			},
			valid: false,
		},
		{
			name:   "crossover disabled",
			modify: func(c *types.Config) {
				c.Engine.PopulationSize = 4
				c.Crossover.Enabled = false
				c.Crossover.NumParents = 3
			},
			valid: true,
		},
		{
			name:   "target fitness alone is a limit",
			modify: func(c *types.Config) {
				target := 1.0
				c.Limits.MaxGenerations = 0
				c.Limits.TargetFitness = &target
			},
			valid: true,
		},
		{
			name:   "resume without a directory",
			modify: func(c *types.Config) {
				c.Checkpoint.Resume = true
			},
			valid: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := getDefaultConfig()
			test.modify(config)
			err := Validate(config)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, core.ErrInvalidConfig))
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	manager := NewManager()
	config := getDefaultConfig()

	t.Setenv(constants.EnvPopulationSize, "20")
	t.Setenv(constants.EnvSeed, "123")
	t.Setenv(constants.EnvMaxGenerations, "500")
	t.Setenv(constants.EnvLogLevel, "debug")
	t.Setenv(constants.EnvEvaluatorMode, constants.EvaluatorPool)
	t.Setenv(constants.EnvCheckpointDir, "custom-checkpoints")

	require.NoError(t, manager.applyEnvOverrides(config))

	assert.Equal(t, 20, config.Engine.PopulationSize)
	assert.Equal(t, uint64(123), config.Engine.Seed)
	assert.Equal(t, 500, config.Limits.MaxGenerations)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, constants.EvaluatorPool, config.Evaluator.Mode)
	assert.Equal(t, "custom-checkpoints", config.Checkpoint.Dir)
}

func TestEnvOverridesRejectMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv(constants.EnvSeed, "-1")

	err := NewManager().applyEnvOverrides(getDefaultConfig())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), constants.EnvSeed)
}

func TestGetSetConfig(t *testing.T) {
	manager := NewManager()
	assert.NotNil(t, manager.GetConfig())

	newConfig := getDefaultConfig()
	newConfig.Limits.MaxGenerations = 999
	manager.SetConfig(newConfig)

	assert.Equal(t, 999, manager.GetConfig().Limits.MaxGenerations)
}

func TestCreateDefaultConfig(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "genevo.yaml")
	require.NoError(t, CreateDefaultConfig(configPath))

	manager := NewManager()
	require.NoError(t, manager.Load(configPath))
	assert.Equal(t, Default(), manager.GetConfig())
}
