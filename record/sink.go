package record

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/overcooked-rl/overcooked"
	"github.com/zeu5/overcooked-rl/types"
)

// EpisodeRecord summarizes a finished episode
type EpisodeRecord struct {
	RunID      string    `json:"run_id"`
	Experiment string    `json:"experiment"`
	Run        int       `json:"run"`
	Episode    int       `json:"episode"`
	Steps      int       `json:"steps"`
	Return     float64   `json:"return"`
	Deliveries int       `json:"deliveries"`
	Terminal   bool      `json:"terminal"`
	RecordedAt time.Time `json:"recorded_at"`
}

// StepRecord is a single transition of an episode
type StepRecord struct {
	RunID      string  `json:"run_id"`
	Experiment string  `json:"experiment"`
	Episode    int     `json:"episode"`
	Step       int     `json:"step"`
	Time       int     `json:"time"`
	StateHash  string  `json:"state_hash"`
	Actions    string  `json:"actions"`
	Reward     float64 `json:"reward"`
	Terminal   bool    `json:"terminal"`
}

// Sink stores finished episodes
type Sink interface {
	WriteEpisode(context.Context, EpisodeRecord, []StepRecord) error
	Close() error
}

// Recorder is an analyzer that hands every finished episode to its sinks.
// A failing sink is logged and does not stop the experiment.
type Recorder struct {
	ctx    context.Context
	runID  string
	sinks  []Sink
	logger *log.Logger

	mu       sync.Mutex
	episodes []EpisodeRecord
}

var _ types.Analyzer = &Recorder{}

func NewRecorder(ctx context.Context, logger *log.Logger, sinks ...Sink) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		ctx:      ctx,
		runID:    uuid.NewString(),
		sinks:    sinks,
		logger:   logger,
		episodes: make([]EpisodeRecord, 0),
	}
}

// RunID identifies all the episodes recorded by this recorder
func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) Analyze(run int, episode int, _ int, experiment string, trace *types.Trace) {
	rec, steps := r.Build(run, episode, experiment, trace)

	r.mu.Lock()
	r.episodes = append(r.episodes, rec)
	r.mu.Unlock()

	for _, s := range r.sinks {
		if err := s.WriteEpisode(r.ctx, rec, steps); err != nil {
			r.logger.Printf("record: %T: episode %d of %s: %v", s, episode, experiment, err)
		}
	}
}

// Build converts a trace into the records handed to the sinks
func (r *Recorder) Build(run, episode int, experiment string, trace *types.Trace) (EpisodeRecord, []StepRecord) {
	rec := EpisodeRecord{
		RunID:      r.runID,
		Experiment: experiment,
		Run:        run,
		Episode:    episode,
		Steps:      trace.Len(),
		Return:     trace.Return(),
		RecordedAt: time.Now().UTC(),
	}
	steps := make([]StepRecord, 0, trace.Len())
	for i := 0; i < trace.Len(); i++ {
		_, a, ns, _ := trace.Get(i)
		reward := trace.Reward(i)
		step := StepRecord{
			RunID:      r.runID,
			Experiment: experiment,
			Episode:    episode,
			Step:       i,
			StateHash:  ns.Hash(),
			Actions:    a.Hash(),
			Reward:     reward,
		}
		if es, ok := ns.(*overcooked.EnvState); ok {
			step.Time = es.Time
			step.Terminal = es.Terminal
		}
		if reward > 0 {
			rec.Deliveries += int(reward / overcooked.DeliveryReward)
		}
		steps = append(steps, step)
	}
	if len(steps) > 0 {
		rec.Terminal = steps[len(steps)-1].Terminal
	}
	return rec, steps
}

// DataSet returns the episodes recorded since the last Reset
func (r *Recorder) DataSet() types.DataSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EpisodeRecord, len(r.episodes))
	copy(out, r.episodes)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.episodes = make([]EpisodeRecord, 0)
}

// Close closes every sink and returns the first error
func (r *Recorder) Close() error {
	var first error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
