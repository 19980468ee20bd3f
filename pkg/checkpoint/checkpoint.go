// Package checkpoint saves evolution states as JSON files and restores them.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ishanwen-byte/genevo-go/internal/constants"
	"github.com/ishanwen-byte/genevo-go/pkg/core"
	"github.com/ishanwen-byte/genevo-go/pkg/listener"
	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

// Snapshot is the serialized form of a state.
type Snapshot[T any] struct {
	Version     string      `json:"version"`
	RunID       string      `json:"run_id"`
	CreatedAt   time.Time   `json:"created_at"`
	Generation  int         `json:"generation"`
	Individuals []Record[T] `json:"individuals"`
}

// Record is one serialized individual. Fitness is nil when the individual is
// unevaluated or its fitness is not a finite number.
type Record[T any] struct {
	Chromosomes [][]T    `json:"chromosomes"`
	Fitness     *float64 `json:"fitness,omitempty"`
}

// Capture converts state into a snapshot.
func Capture[T any](state core.State[T], runID string) *Snapshot[T] {
	pop := state.Population()
	snap := &Snapshot[T]{
		Version:     constants.CheckpointVersion,
		RunID:       runID,
		CreatedAt:   time.Now(),
		Generation:  state.Generation(),
		Individuals: make([]Record[T], len(pop)),
	}
	for i, ind := range pop {
		rec := Record[T]{Chromosomes: ind.Genotype().Values()}
		if f := ind.Fitness(); ind.IsEvaluated() && !math.IsNaN(f) && !math.IsInf(f, 0) {
			rec.Fitness = &f
		}
		snap.Individuals[i] = rec
	}
	return snap
}

// Save writes snap to dir as checkpoint_<generation>.json and latest.json and
// returns the path of the first.
func Save[T any](snap *Snapshot[T], dir string) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	file := filepath.Join(dir, fmt.Sprintf("checkpoint_%d.json", snap.Generation))
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	latest := filepath.Join(dir, constants.LatestCheckpoint)
	if err := os.WriteFile(latest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write latest checkpoint: %w", err)
	}
	return file, nil
}

// Load reads a snapshot written by Save.
func Load[T any](path string) (*Snapshot[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var snap Snapshot[T]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if snap.Version != constants.CheckpointVersion {
		return nil, fmt.Errorf("%w: unsupported checkpoint version %q", core.ErrInvalidArgument, snap.Version)
	}
	return &snap, nil
}

// LoadLatest reads latest.json from dir.
func LoadLatest[T any](dir string) (*Snapshot[T], error) {
	return Load[T](filepath.Join(dir, constants.LatestCheckpoint))
}

// Restore rebuilds a state from snap. Gene kinds and bounds come from
// template, which must have the shape of the saved genotypes; a builder
// output is a suitable template.
func Restore[T any](snap *Snapshot[T], template representation.Genotype[T], ranker core.Ranker[T]) (core.State[T], error) {
	pop := make(core.Population[T], len(snap.Individuals))
	for i, rec := range snap.Individuals {
		g, err := template.WithValues(rec.Chromosomes)
		if err != nil {
			return core.State[T]{}, fmt.Errorf("failed to restore individual %d: %w", i, err)
		}
		if rec.Fitness != nil {
			pop[i] = core.NewEvaluatedIndividual(g, *rec.Fitness)
		} else {
			pop[i] = core.NewIndividual(g)
		}
	}
	return core.NewState(ranker, pop).WithGeneration(snap.Generation), nil
}

// Listener saves a snapshot every Interval generations. Save errors are
// logged and kept for Err; they never stop the run.
type Listener[T any] struct {
	listener.Base[T]
	dir      string
	interval int
	runID    string
	logger   *logrus.Logger
	err      error
}

// NewListener returns a checkpointing listener writing to dir.
func NewListener[T any](dir string, interval int, runID string, logger *logrus.Logger) (*Listener[T], error) {
	var rules core.Rules
	rules.Check(dir != "", "dir is required")
	rules.Check(interval > 0, "interval must be greater than 0 (got %d)", interval)
	if err := rules.Err("checkpoint"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}
	return &Listener[T]{dir: dir, interval: interval, runID: runID, logger: logger}, nil
}

func (l *Listener[T]) GenerationEnded(state core.State[T]) {
	if state.Generation()%l.interval != 0 {
		return
	}
	l.save(state)
}

// EvolutionEnded saves the final state unless GenerationEnded already did.
func (l *Listener[T]) EvolutionEnded(state core.State[T]) {
	if state.Generation()%l.interval == 0 {
		return
	}
	l.save(state)
}

func (l *Listener[T]) save(state core.State[T]) {
	snap := Capture(state, l.runID)
	file, err := Save(snap, l.dir)
	if err != nil {
		l.err = err
		l.logger.WithError(err).WithField("generation", state.Generation()).Error("Failed to save checkpoint")
		return
	}
	l.logger.WithFields(logrus.Fields{
		"generation": state.Generation(),
		"file":       file,
		"run_id":     l.runID,
	}).Info("Saved checkpoint")
}

// Err returns the last save error.
func (l *Listener[T]) Err() error {
	return l.err
}
