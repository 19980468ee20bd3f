package types

import (
	"time"
)

// Config represents the main configuration
type Config struct {
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Selection  SelectionConfig  `yaml:"selection" json:"selection"`
	Crossover  CrossoverConfig  `yaml:"crossover" json:"crossover"`
	Mutation   MutationConfig   `yaml:"mutation" json:"mutation"`
	Evaluator  EvaluatorConfig  `yaml:"evaluator" json:"evaluator"`
	Limits     LimitsConfig     `yaml:"limits" json:"limits"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing" json:"tracing"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`
	Problem    ProblemConfig    `yaml:"problem" json:"problem"`
}

// EngineConfig represents the generational loop configuration
type EngineConfig struct {
	PopulationSize    int     `yaml:"population_size" json:"population_size" validate:"gt=0"`
	SurvivalRate      float64 `yaml:"survival_rate" json:"survival_rate" validate:"gte=0,lte=1"`
	Seed              uint64  `yaml:"seed" json:"seed"`
	EqualityThreshold float64 `yaml:"equality_threshold" json:"equality_threshold" validate:"gte=0"`
	Ranker            string  `yaml:"ranker" json:"ranker" validate:"oneof=max min"`
}

// SelectionConfig represents parent and survivor selector choices
type SelectionConfig struct {
	Parents   SelectorConfig `yaml:"parents" json:"parents"`
	Survivors SelectorConfig `yaml:"survivors" json:"survivors"`
}

// SelectorConfig represents a single selector
type SelectorConfig struct {
	Kind           string `yaml:"kind" json:"kind" validate:"oneof=tournament roulette"`
	TournamentSize int    `yaml:"tournament_size" json:"tournament_size" validate:"gte=0"`
	Distinct       bool   `yaml:"distinct" json:"distinct"`
	Sorted         bool   `yaml:"sorted" json:"sorted"`
}

// CrossoverConfig represents crossover configuration
type CrossoverConfig struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	NumParents     int     `yaml:"num_parents" json:"num_parents" validate:"gte=2"`
	NumOffspring   int     `yaml:"num_offspring" json:"num_offspring" validate:"gte=1"`
	ChromosomeRate float64 `yaml:"chromosome_rate" json:"chromosome_rate" validate:"gte=0,lte=1"`
	Exclusive      bool    `yaml:"exclusive" json:"exclusive"`
}

// MutationConfig represents mutation configuration
type MutationConfig struct {
	IndividualRate float64 `yaml:"individual_rate" json:"individual_rate" validate:"gte=0,lte=1"`
	ChromosomeRate float64 `yaml:"chromosome_rate" json:"chromosome_rate" validate:"gte=0,lte=1"`
	GeneRate       float64 `yaml:"gene_rate" json:"gene_rate" validate:"gte=0,lte=1"`
}

// EvaluatorConfig represents fitness evaluation configuration
type EvaluatorConfig struct {
	Mode    string `yaml:"mode" json:"mode" validate:"oneof=sequential concurrent pool"`
	Workers int    `yaml:"workers" json:"workers" validate:"gte=1"`
	Memoize bool   `yaml:"memoize" json:"memoize"`
}

// LimitsConfig represents termination limits
type LimitsConfig struct {
	MaxGenerations    int           `yaml:"max_generations" json:"max_generations" validate:"gte=0"`
	TargetFitness     *float64      `yaml:"target_fitness" json:"target_fitness"`
	SteadyGenerations int           `yaml:"steady_generations" json:"steady_generations" validate:"gte=0"`
	TimeLimit         time.Duration `yaml:"time_limit" json:"time_limit" validate:"gte=0"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Address   string `yaml:"address" json:"address"`
}

// TracingConfig represents OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// CheckpointConfig represents checkpoint configuration
type CheckpointConfig struct {
	Dir      string `yaml:"dir" json:"dir"`
	Interval int    `yaml:"interval" json:"interval" validate:"gte=0"`
	Resume   bool   `yaml:"resume" json:"resume"`
}

// ProblemConfig represents the shape of the built-in OneMax problem
type ProblemConfig struct {
	Chromosomes int `yaml:"chromosomes" json:"chromosomes" validate:"gt=0"`
	Genes       int `yaml:"genes" json:"genes" validate:"gt=0"`
}
