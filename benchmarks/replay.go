package benchmarks

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/overcooked-rl/record"
)

func ReplayCommand() *cobra.Command {
	var episode int

	cmd := &cobra.Command{
		Use:   "replay [TRACE_FILE]",
		Short: "Print the steps of a recorded trace file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := record.ReadTraceFile(args[0])
			if err != nil {
				return err
			}
			total := 0.0
			count := 0
			for _, s := range steps {
				if episode >= 0 && s.Episode != episode {
					continue
				}
				count++
				total += s.Reward
				marker := ""
				if s.Reward > 0 {
					marker = " delivered"
				}
				fmt.Printf("%s ep=%d step=%d t=%d %s reward=%.0f%s\n", s.Experiment, s.Episode, s.Step, s.Time, s.Actions, s.Reward, marker)
			}
			fmt.Printf("%d steps, total reward %.0f\n", count, total)
			return nil
		},
	}
	cmd.PersistentFlags().IntVar(&episode, "episode", -1, "Only print this episode")
	return cmd
}
