package types

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
	"sync"
	"time"
)

// StepContext carries a single transition to the policy
type StepContext struct {
	Step      int
	State     State
	Action    Action
	NextState State
	// Reward as reported by the environment
	Reward float64

	Episode *EpisodeContext
}

// EpisodeContext stores the information used and returned by an episode
type EpisodeContext struct {
	Context context.Context
	Cancel  context.CancelFunc

	Episode        int
	ExperimentName string
	Run            int

	Trace     *Trace
	Timesteps int
	Err       error

	TimedOut         bool
	HorizonEnd       bool
	OutOfSpaceBounds bool // terminal state reached before the horizon
	RunDuration      time.Duration

	Report        *EpisodeReport
	ToPrintReport bool

	reportPath string
	sampling   float32
}

func NewEpisodeContext(parent context.Context, episode int, experimentName string, rConfig *experimentRunConfig) *EpisodeContext {
	var ctx context.Context
	var cancel context.CancelFunc
	if rConfig.Timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, rConfig.Timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	eCtx := &EpisodeContext{
		Context:        ctx,
		Cancel:         cancel,
		Episode:        episode,
		ExperimentName: experimentName,
		Run:            rConfig.CurrentRun,
		Trace:          NewTrace(),
		Report:         NewEpisodeReport(episode, experimentName),
		reportPath:     rConfig.ReportSavePath,
	}
	if rConfig.ReportsPrintConfig != nil {
		eCtx.sampling = rConfig.ReportsPrintConfig.Sampling
	}
	return eCtx
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
	e.Report.AddLog(err.Error(), "error")
}

func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
	e.Report.AddLog("episode timed out", "timeout")
}

func (e *EpisodeContext) SetToPrintReport(b bool) {
	e.ToPrintReport = b
}

// NewStepContext prepares the context for step i
func (e *EpisodeContext) NewStepContext(i int, state State, action Action) *StepContext {
	e.Report.setEpisodeStep(i)
	return &StepContext{
		Step:    i,
		State:   state,
		Action:  action,
		Episode: e,
	}
}

// RecordReport writes the report of the episode under epReports
func (e *EpisodeContext) RecordReport() {
	if e.reportPath == "" {
		return
	}
	fileName := e.ExperimentName + "_run" + strconv.Itoa(e.Run) + "_ep" + strconv.Itoa(e.Episode) + ".json"
	bs, err := json.Marshal(e.Report)
	if err != nil {
		return
	}
	os.WriteFile(path.Join(e.reportPath, "epReports", fileName), bs, 0644)
}

// REPORT CONFIGURATION

// Configuration of the report
type ReportsPrintConfig struct {
	PrintIfError   bool // print the report if an error occurs
	PrintIfTimeout bool // print the report if a timeout occurs

	Sampling float32 // rate of randomly printed reports (for successful episodes)
}

// configuration of the report with no printing
func RepConfigOff() *ReportsPrintConfig {
	return &ReportsPrintConfig{
		PrintIfError:   false,
		PrintIfTimeout: false,
		Sampling:       0.0,
	}
}

// prints reports for both errors and timeouts. Prints a successfull episode with probability 0.02
func RepConfigStandard() *ReportsPrintConfig {
	return &ReportsPrintConfig{
		PrintIfError:   true,
		PrintIfTimeout: true,
		Sampling:       0.02,
	}
}

// EPISODE REPORT

// Report of an episode
type EpisodeReport struct {
	EpisodeNumber  int
	ExperimentName string
	episodeStep    int

	startTime time.Time
	lock      *sync.Mutex

	Timeline []*EpisodeReportEntry
	Logs     map[string]string
}

func NewEpisodeReport(episodeNumber int, experimentName string) *EpisodeReport {
	return &EpisodeReport{
		EpisodeNumber:  episodeNumber,
		ExperimentName: experimentName,
		startTime:      time.Now(),
		lock:           &sync.Mutex{},
		Timeline:       make([]*EpisodeReportEntry, 0),
		Logs:           make(map[string]string),
	}
}

func (e *EpisodeReport) setEpisodeStep(step int) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.episodeStep = step
}

// add a new entry to the report
func (e *EpisodeReport) AddEntry(value interface{}, entryType string, caller string) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.Timeline = append(e.Timeline, &EpisodeReportEntry{
		Index:       len(e.Timeline),
		Timestamp:   time.Since(e.startTime),
		EpisodeStep: e.episodeStep,
		EntryType:   entryType,
		Caller:      caller,
		Value:       value,
	})
}

func (e *EpisodeReport) AddTimeEntry(value time.Duration, entryType string, caller string) {
	e.AddEntry(value, entryType, caller)
}

func (e *EpisodeReport) AddLog(value string, key string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.Logs[key] = value
}

// Entry of the Report
type EpisodeReportEntry struct {
	Index     int           // index of the entry, managed by the report
	Timestamp time.Duration // timestamp of the entry, managed by the report

	EpisodeStep int         // episode step
	EntryType   string      // entry type
	Caller      string      // the method adding the entry
	Value       interface{} // entry value
}

func (en *EpisodeReportEntry) String() string {
	return fmt.Sprintf("[ %6d | %5d | %3d ] %20s : %v (%s)", en.Index, en.Timestamp.Milliseconds(), en.EpisodeStep, en.EntryType, en.Value, en.Caller)
}
