package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/gosuri/uilive"
	"github.com/zeu5/overcooked-rl/util"
)

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Timeout    time.Duration
	Context    context.Context

	// thresholds to abort the experiment
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// last traces configuration
	PrintLastTraces     int
	PrintLastTracesFunc func(*Trace) string

	// reports configuration
	ReportsPrintConfig *ReportsPrintConfig
	ReportSavePath     string

	Output io.Writer
}

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment

	properties     []*Monitor
	propertyNames  []string
	PropertyStats  []int
	EpisodeReturns []float64
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:           name,
		policy:         policy,
		environment:    environment,
		properties:     make([]*Monitor, 0),
		propertyNames:  make([]string, 0),
		PropertyStats:  make([]int, 0),
		EpisodeReturns: make([]float64, 0),
	}
}

// AddProperty registers a monitor, the number of episodes satisfying it is reported at the end of the run
func (e *Experiment) AddProperty(name string, m *Monitor) {
	e.properties = append(e.properties, m)
	e.propertyNames = append(e.propertyNames, name)
	e.PropertyStats = append(e.PropertyStats, 0)
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.ReportSavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return
	}
	util.AppendToFile(tracesFile, string(bs))
}

// Run the experiment for the specified number of episodes
// Additionally, for each episode, check if any of the properties have been satisfied
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	select {
	case <-rConfig.Context.Done():
		return
	default:
	}

	writer := uilive.New()
	if rConfig.Output != nil {
		writer.Out = rConfig.Output
	}
	writer.Start()
	defer writer.Stop()

	totalTimeout := 0
	totalWithError := 0
	consecutiveTimeouts := 0
	consecutiveErrors := 0

	totalOutOfSpaceBounds := 0 // episodes ended in a terminal state
	totalHorizon := 0          // episodes ended with the horizon reached
	totalValidEpisodes := 0
	executedTimesteps := 0

	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
	})

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return
		default:
		}

		eCtx := NewEpisodeContext(rConfig.Context, episode, e.Name, rConfig)
		if episode >= rConfig.Episodes-rConfig.PrintLastTraces {
			eCtx.SetToPrintReport(true)
		}

		startingTimesteps := executedTimesteps
		e.runEpisode(eCtx, agent, rConfig)
		executedTimesteps += eCtx.Timesteps

		if eCtx.TimedOut {
			totalTimeout += 1
			consecutiveTimeouts += 1
		} else {
			consecutiveTimeouts = 0
		}
		if eCtx.Err != nil {
			totalWithError += 1
			consecutiveErrors += 1
		} else {
			consecutiveErrors = 0
		}

		if rConfig.RecordTraces {
			e.recordTrace(rConfig, eCtx.Trace)
		}

		// analyze the trace, even if the episode timed out or ended with an error
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, startingTimesteps, e.Name, eCtx.Trace)
		}

		if !eCtx.TimedOut && eCtx.Err == nil {
			totalValidEpisodes += 1
			if eCtx.OutOfSpaceBounds {
				totalOutOfSpaceBounds += 1
			} else if eCtx.HorizonEnd {
				totalHorizon += 1
			}
			e.EpisodeReturns = append(e.EpisodeReturns, eCtx.Trace.Return())
			for i, prop := range e.properties {
				if _, ok := prop.Check(eCtx.Trace); ok {
					e.PropertyStats[i] += 1
				}
			}
		}

		if eCtx.ToPrintReport && rConfig.PrintLastTracesFunc != nil {
			filePath := path.Join(rConfig.ReportSavePath, "lastTraces", e.Name+"_run"+strconv.Itoa(rConfig.CurrentRun)+"_ep"+strconv.Itoa(episode)+".txt")
			util.WriteToFile(filePath, rConfig.PrintLastTracesFunc(eCtx.Trace))
		}

		fmt.Fprintf(writer, "Exp: %s, Eps: %d/%d, Valid: %d, TOut: %d, Err: %d || Horizon: %d, Terminal: %d, TSteps: %d\n",
			e.Name, episode+1, rConfig.Episodes, totalValidEpisodes, totalTimeout, totalWithError, totalHorizon, totalOutOfSpaceBounds, executedTimesteps)

		if consecutiveTimeouts >= rConfig.ConsecutiveTimeoutsAbort {
			fmt.Fprintf(writer.Bypass(), "Aborting experiment %s : %d consecutive timeouts\n", e.Name, consecutiveTimeouts)
			break
		}
		if consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			fmt.Fprintf(writer.Bypass(), "Aborting experiment %s : %d consecutive errors\n", e.Name, consecutiveErrors)
			break
		}
	}

	if rConfig.RecordPolicy {
		e.policy.Record(path.Join(rConfig.ReportSavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)))
	}

	for i, count := range e.PropertyStats {
		fmt.Fprintf(writer.Bypass(), "Property %s satisfied in %d episodes\n", e.propertyNames[i], count)
	}
}

func (e *Experiment) runEpisode(eCtx *EpisodeContext, agent *Agent, rConfig *experimentRunConfig) {
	defer eCtx.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				eCtx.SetError(fmt.Errorf("%v", r))
			}
		}()
		start := time.Now()
		agent.RunEpisode(eCtx)
		eCtx.RunDuration = time.Since(start)
		eCtx.Report.AddTimeEntry(eCtx.RunDuration, "return_time", "experiment.runEpisode")
	}()

	select {
	case <-eCtx.Context.Done():
		if deadline, ok := eCtx.Context.Deadline(); ok && !time.Now().Before(deadline) {
			eCtx.SetTimedOut()
		}
		<-done
	case <-done:
	}

	switch {
	case eCtx.TimedOut:
		if rConfig.ReportsPrintConfig != nil && rConfig.ReportsPrintConfig.PrintIfTimeout {
			eCtx.RecordReport()
		}
	case eCtx.Err != nil:
		if rConfig.ReportsPrintConfig != nil && rConfig.ReportsPrintConfig.PrintIfError {
			eCtx.RecordReport()
		}
	default:
		if eCtx.Timesteps < rConfig.Horizon {
			eCtx.OutOfSpaceBounds = true
		} else {
			eCtx.HorizonEnd = true
		}
		if eCtx.ToPrintReport || rand.Float32() < eCtx.sampling {
			eCtx.RecordReport()
		}
	}
}

// Reset cleans the information about the runs (to save memory)
func (e *Experiment) Reset() {
	e.policy.Reset()
	e.EpisodeReturns = make([]float64, 0)
	for i := range e.PropertyStats {
		e.PropertyStats[i] = 0
	}
}

// Generic Dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, starting timestep, experiment, trace
	Analyze(int, int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
// run, total episodes, experiment names, datasets
type Comparator func(int, int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(i, _ int, s []string, ds []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // number of steps

	RecordPath   string              // path to store the results
	ReportConfig *ReportsPrintConfig // configuration for the reports
	Timeout      time.Duration       // timeout for each episode

	// thresholds to abort the experiment
	ConsecutiveTimeoutsAbort int
	ConsecutiveErrorsAbort   int

	// record flags
	RecordTraces bool
	RecordPolicy bool

	// last traces configuration
	PrintLastTraces     int
	PrintLastTracesFunc func(*Trace) string

	// where progress is printed, stdout if nil
	Output io.Writer
}

// Comparison contains the different experiments to compare
// The traces obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance and prepares the record folders
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := RemoveContents(config.RecordPath); err != nil {
			return nil, err
		}
	}

	folders := []string{"epReports"}
	if config.RecordTraces {
		folders = append(folders, "traces")
	}
	if config.RecordPolicy {
		folders = append(folders, "policies")
	}
	if config.PrintLastTraces > 0 {
		if config.PrintLastTracesFunc == nil {
			return nil, fmt.Errorf("PrintLastTracesFunc must be defined when printing the last traces")
		}
		folders = append(folders, "lastTraces")
	}
	for _, s := range folders {
		if err := os.MkdirAll(path.Join(config.RecordPath, s), 0777); err != nil {
			return nil, err
		}
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["record_traces"] = cfg.RecordTraces
	out["record_policy"] = cfg.RecordPolicy
	out["print_last_traces"] = cfg.PrintLastTraces
	out["report_config"] = cfg.ReportConfig
	if cfg.Timeout != 0 {
		out["timeout"] = cfg.Timeout.String()
	}

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.json"), bs, 0644)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil {
		return fmt.Errorf("recording comparison config: %w", err)
	}
	out := c.cConfig.Output
	if out == nil {
		out = os.Stdout
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Fprintf(out, "Run %d\n", run+1)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			e.Run(c.prepareRunConfig(ctx, run))
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, c.cConfig.Episodes, names, datasets[name])
		}
	}
	return nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:               run,
		Episodes:                 c.cConfig.Episodes,
		Horizon:                  c.cConfig.Horizon,
		Analyzers:                make([]Analyzer, 0),
		RecordTraces:             c.cConfig.RecordTraces,
		RecordPolicy:             c.cConfig.RecordPolicy,
		PrintLastTraces:          c.cConfig.PrintLastTraces,
		PrintLastTracesFunc:      c.cConfig.PrintLastTracesFunc,
		ReportsPrintConfig:       c.cConfig.ReportConfig,
		ReportSavePath:           c.cConfig.RecordPath,
		Timeout:                  c.cConfig.Timeout,
		Context:                  ctx,
		ConsecutiveTimeoutsAbort: c.cConfig.ConsecutiveTimeoutsAbort,
		ConsecutiveErrorsAbort:   c.cConfig.ConsecutiveErrorsAbort,
		Output:                   c.cConfig.Output,
	}
	if rCfg.ConsecutiveErrorsAbort == 0 {
		rCfg.ConsecutiveErrorsAbort = 10
	}
	if rCfg.ConsecutiveTimeoutsAbort == 0 {
		rCfg.ConsecutiveTimeoutsAbort = 10
	}
	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}

// Delete everything in the directory except the outtext.txt file
func RemoveContents(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name != "outtext.txt" {
			if err := os.RemoveAll(path.Join(dir, name)); err != nil {
				return err
			}
		}
	}
	return nil
}
