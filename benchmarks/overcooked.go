package benchmarks

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/overcooked-rl/config"
	"github.com/zeu5/overcooked-rl/overcooked"
	"github.com/zeu5/overcooked-rl/policies"
	"github.com/zeu5/overcooked-rl/record"
	"github.com/zeu5/overcooked-rl/types"
)

func loadLayout(cfg *config.Config) (*overcooked.Layout, error) {
	if cfg.LayoutFile != "" {
		return overcooked.LoadLayoutFile(cfg.LayoutFile)
	}
	return overcooked.LayoutByName(cfg.Layout)
}

// openSinks creates the record sinks enabled in the configuration
func openSinks(cfg *config.Config) ([]record.Sink, *record.SQLiteIndex, error) {
	sinks := make([]record.Sink, 0)
	if cfg.Record.Traces {
		sinks = append(sinks, record.NewTraceWriter(path.Join(cfg.RecordPath, "traces")))
	}
	var index *record.SQLiteIndex
	if cfg.Record.SQLitePath != "" {
		var err error
		index, err = record.OpenSQLite(cfg.Record.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening episode index: %w", err)
		}
		sinks = append(sinks, index)
	}
	if cfg.Record.RedisAddr != "" {
		sinks = append(sinks, record.NewRedisSink(cfg.Record.RedisAddr, cfg.Record.RedisStream))
	}
	return sinks, index, nil
}

// OvercookedExploration compares the configured policies on a single layout
func OvercookedExploration(cfg *config.Config, ctx context.Context) error {
	layout, err := loadLayout(cfg)
	if err != nil {
		return err
	}

	c, err := types.NewComparison(&types.ComparisonConfig{
		Runs:       cfg.Runs,
		Episodes:   cfg.Episodes,
		Horizon:    cfg.Horizon,
		RecordPath: cfg.RecordPath,
		Timeout:    cfg.Timeout,
		// record flags
		RecordTraces: false,
		RecordPolicy: false,
		// last traces
		PrintLastTraces:     2,
		PrintLastTracesFunc: overcooked.RenderTrace,
		// report config
		ReportConfig: types.RepConfigOff(),
	})
	if err != nil {
		return err
	}
	stopProfiling := startProfiling(cfg.RecordPath)
	defer stopProfiling()

	sinks, index, err := openSinks(cfg)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "overcooked ", log.LstdFlags)
	recorder := record.NewRecorder(ctx, logger, sinks...)
	defer recorder.Close()

	plotPath := path.Join(cfg.RecordPath, "plots")
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer(nil), types.CoverageComparator(plotPath))
	c.AddAnalysis("Returns", overcooked.NewReturnsAnalyzer(), overcooked.ReturnsComparator(plotPath, 50))
	c.AddAnalysis("Record", recorder, types.NoopComparator())

	for _, pc := range cfg.Experiments {
		policy, err := policies.NewPolicy(pc)
		if err != nil {
			return err
		}
		engine := overcooked.New(layout, overcooked.WithMaxSteps(cfg.MaxSteps))
		e := types.NewExperiment(pc.Name, policy, overcooked.NewEnvironment(engine))
		for name, m := range overcooked.Milestones() {
			e.AddProperty(name, m)
		}
		c.AddExperiment(e)
	}

	fmt.Printf("Layout %s, run id %s\n", layout.Name, recorder.RunID())
	if err := c.Run(ctx); err != nil {
		return err
	}

	if index != nil {
		for _, pc := range cfg.Experiments {
			sum, err := index.Summary(ctx, pc.Name)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %d episodes, mean return %.2f, max return %.0f, deliveries %d\n",
				sum.Experiment, sum.Episodes, sum.MeanReturn, sum.MaxReturn, sum.Deliveries)
		}
	}
	return nil
}

func OvercookedCommand() *cobra.Command {
	var layout string
	var maxSteps int
	var traces bool
	var sqlitePath string
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "overcooked",
		Short: "Compare exploration policies on an Overcooked layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("layout") {
				cfg.Layout = layout
				cfg.LayoutFile = ""
			}
			if cmd.Flags().Changed("max-steps") {
				cfg.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("traces") {
				cfg.Record.Traces = traces
			}
			if cmd.Flags().Changed("sqlite") {
				cfg.Record.SQLitePath = sqlitePath
			}
			if cmd.Flags().Changed("redis") {
				cfg.Record.RedisAddr = redisAddr
			}

			ctx, done := interruptContext()
			defer done()
			return OvercookedExploration(cfg, ctx)
		},
	}
	cmd.PersistentFlags().StringVarP(&layout, "layout", "l", "cramped_room", "Name of the builtin layout")
	cmd.PersistentFlags().IntVar(&maxSteps, "max-steps", overcooked.DefaultMaxSteps, "Number of steps after which an episode is terminal")
	cmd.PersistentFlags().BoolVar(&traces, "traces", false, "Record every step as compressed JSONL")
	cmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Index episodes in this sqlite database")
	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Publish episode summaries to this redis server")
	return cmd
}
