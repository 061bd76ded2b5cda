package record

import (
	"context"
	"errors"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zeu5/overcooked-rl/overcooked"
	"github.com/zeu5/overcooked-rl/types"
)

func testTrace(t *testing.T, steps int) *types.Trace {
	t.Helper()
	layout, err := overcooked.LayoutByName("cramped_room")
	require.NoError(t, err)
	env := overcooked.NewEnvironment(overcooked.New(layout, overcooked.WithMaxSteps(steps)))

	state, err := env.Reset(nil)
	require.NoError(t, err)
	trace := types.NewTrace()
	for i := 0; len(state.Actions()) > 0; i++ {
		action := overcooked.JointAction{Actions: [overcooked.NumAgents]overcooked.Action{overcooked.ActionStay, overcooked.ActionLeft}}
		sCtx := &types.StepContext{Step: i, State: state, Action: action}
		next, err := env.Step(action, sCtx)
		require.NoError(t, err)
		trace.Append(i, state, action, next, sCtx.Reward)
		state = next
	}
	return trace
}

type memorySink struct {
	episodes []EpisodeRecord
	steps    int
	err      error
	closed   bool
}

func (m *memorySink) WriteEpisode(_ context.Context, rec EpisodeRecord, steps []StepRecord) error {
	m.episodes = append(m.episodes, rec)
	m.steps += len(steps)
	return m.err
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func TestRecorderFansOut(t *testing.T) {
	good := &memorySink{}
	bad := &memorySink{err: errors.New("unavailable")}
	r := NewRecorder(context.Background(), log.New(io.Discard, "", 0), bad, good)
	require.NotEmpty(t, r.RunID())

	r.Analyze(0, 3, 0, "Random", testTrace(t, 5))

	require.Len(t, good.episodes, 1)
	require.Len(t, bad.episodes, 1)
	rec := good.episodes[0]
	require.Equal(t, r.RunID(), rec.RunID)
	require.Equal(t, "Random", rec.Experiment)
	require.Equal(t, 3, rec.Episode)
	require.Equal(t, 5, rec.Steps)
	require.Equal(t, 0.0, rec.Return)
	require.True(t, rec.Terminal)
	require.Equal(t, 5, good.steps)

	ds, ok := r.DataSet().([]EpisodeRecord)
	require.True(t, ok)
	require.Len(t, ds, 1)
	r.Reset()
	require.Len(t, r.DataSet().([]EpisodeRecord), 0)

	require.NoError(t, r.Close())
	require.True(t, good.closed)
	require.True(t, bad.closed)
}

func TestBuildStepRecords(t *testing.T) {
	r := NewRecorder(context.Background(), nil)
	_, steps := r.Build(1, 0, "exp", testTrace(t, 3))
	require.Len(t, steps, 3)
	for i, s := range steps {
		require.Equal(t, i, s.Step)
		require.Equal(t, i+1, s.Time)
		require.Equal(t, "stay|left", s.Actions)
	}
	require.False(t, steps[1].Terminal)
	require.True(t, steps[2].Terminal)
}

func TestTraceWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewTraceWriter(dir)
	r := NewRecorder(context.Background(), nil, w)

	r.Analyze(0, 0, 0, "QLearning", testTrace(t, 4))
	r.Analyze(0, 1, 4, "QLearning", testTrace(t, 4))
	r.Analyze(0, 0, 0, "Random", testTrace(t, 2))
	require.NoError(t, r.Close())

	steps, err := ReadTraceFile(w.PathFor("QLearning"))
	require.NoError(t, err)
	require.Len(t, steps, 8)
	require.Equal(t, 1, steps[4].Episode)
	require.Equal(t, 0, steps[4].Step)
	require.Equal(t, r.RunID(), steps[7].RunID)

	steps, err = ReadTraceFile(filepath.Join(dir, "Random.jsonl.zst"))
	require.NoError(t, err)
	require.Len(t, steps, 2)
}

func TestReadTraceFileMissing(t *testing.T) {
	_, err := ReadTraceFile(filepath.Join(t.TempDir(), "none.jsonl.zst"))
	require.Error(t, err)
}

func TestSQLiteIndexSummary(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "index.sqlite"))
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	now := time.Now()
	records := []EpisodeRecord{
		{RunID: "r", Experiment: "A", Episode: 0, Steps: 400, Return: 20, Deliveries: 1, Terminal: true, RecordedAt: now},
		{RunID: "r", Experiment: "A", Episode: 1, Steps: 400, Return: 60, Deliveries: 3, Terminal: true, RecordedAt: now},
		{RunID: "r", Experiment: "B", Episode: 0, Steps: 10, Return: 0, RecordedAt: now},
	}
	for _, rec := range records {
		require.NoError(t, idx.WriteEpisode(ctx, rec, nil))
	}
	// rewriting an episode replaces the row
	require.NoError(t, idx.WriteEpisode(ctx, records[0], nil))

	sum, err := idx.Summary(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, 2, sum.Episodes)
	require.InDelta(t, 40.0, sum.MeanReturn, 1e-9)
	require.Equal(t, 60.0, sum.MaxReturn)
	require.Equal(t, 4, sum.Deliveries)

	sum, err = idx.Summary(ctx, "missing")
	require.NoError(t, err)
	require.Equal(t, 0, sum.Episodes)

	names, err := idx.Experiments(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, names)
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite("")
	require.Error(t, err)
}

func TestRedisPayload(t *testing.T) {
	sink := NewRedisSink("127.0.0.1:0", "overcooked:episodes")
	defer sink.Close()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	args := sink.xAddArgs(EpisodeRecord{RunID: "id", Experiment: "A", Run: 1, Episode: 7, Steps: 400, Return: 40, Deliveries: 2, Terminal: true, RecordedAt: at})
	require.Equal(t, "overcooked:episodes", args.Stream)
	values, ok := args.Values.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "id", values["run_id"])
	require.Equal(t, "7", values["episode"])
	require.Equal(t, "40", values["return"])
	require.Equal(t, "2", values["deliveries"])
	require.Equal(t, "true", values["terminal"])
	require.Equal(t, "2024-01-02T03:04:05Z", values["recorded_at"])
}
