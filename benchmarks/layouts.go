package benchmarks

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeu5/overcooked-rl/overcooked"
)

func LayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts [NAME]",
		Short: "List the builtin layouts or render one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range overcooked.LayoutNames() {
					fmt.Println(name)
				}
				return nil
			}
			layout, err := overcooked.LayoutByName(args[0])
			if err != nil {
				return err
			}
			state, _ := overcooked.New(layout).Reset()
			fmt.Print(overcooked.Render(state))
			return nil
		},
	}
}
