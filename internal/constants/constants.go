package constants

import "time"

// Application constants
const (
	Name        = "genevo"
	Version     = "1.0.0"
	Description = "Generational evolutionary-computation engine"

	// Engine defaults
	DefaultPopulationSize    = 50
	DefaultSurvivalRate      = 0.4
	DefaultSeed              = 42
	DefaultEqualityThreshold = 1e-9
	DefaultRanker            = RankerMax

	// Selection defaults
	DefaultTournamentSize = 3

	// Crossover defaults
	DefaultNumParents     = 2
	DefaultNumOffspring   = 2
	DefaultChromosomeRate = 0.5

	// Mutation defaults
	DefaultIndividualRate         = 1.0
	DefaultMutationChromosomeRate = 1.0
	DefaultGeneRate               = 0.05

	// Evaluator defaults
	DefaultEvaluatorMode = EvaluatorConcurrent
	DefaultWorkers       = 4

	// Limit defaults
	DefaultMaxGenerations = 100
	DefaultTimeLimit      = time.Duration(0)

	// Checkpoint defaults
	DefaultCheckpointInterval = 10
	CheckpointVersion         = "1.0"
	LatestCheckpoint          = "latest.json"

	// Problem defaults (OneMax)
	DefaultChromosomes = 1
	DefaultGenes       = 32

	// Metrics defaults
	DefaultMetricsNamespace = "genevo"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatText

	// Exit codes
	ExitSuccess   = 0
	ExitError     = 1
	ExitInterrupt = 2
)

// Rankers
const (
	RankerMax = "max"
	RankerMin = "min"
)

// Selector kinds
const (
	SelectorTournament = "tournament"
	SelectorRoulette   = "roulette"
)

// Evaluator modes
const (
	EvaluatorSequential = "sequential"
	EvaluatorConcurrent = "concurrent"
	EvaluatorPool       = "pool"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Environment variable overrides
const (
	EnvPopulationSize = "GENEVO_POPULATION_SIZE"
	EnvSeed           = "GENEVO_SEED"
	EnvMaxGenerations = "GENEVO_MAX_GENERATIONS"
	EnvLogLevel       = "GENEVO_LOG_LEVEL"
	EnvEvaluatorMode  = "GENEVO_EVALUATOR_MODE"
	EnvCheckpointDir  = "GENEVO_CHECKPOINT_DIR"
)
