package benchmarks

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/zeu5/overcooked-rl/overcooked"
	"github.com/zeu5/overcooked-rl/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	var layoutFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the environment over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.ListenAddr = addr
			}
			if cmd.Flags().Changed("layout-file") {
				cfg.LayoutFile = layoutFile
			}

			layouts := overcooked.LayoutByName
			defaultLayout := cfg.Layout
			if cfg.LayoutFile != "" {
				custom, err := overcooked.LoadLayoutFile(cfg.LayoutFile)
				if err != nil {
					return err
				}
				defaultLayout = custom.Name
				layouts = func(name string) (*overcooked.Layout, error) {
					if name == custom.Name {
						return custom, nil
					}
					return overcooked.LayoutByName(name)
				}
			}

			ctx, done := interruptContext()
			defer done()

			s := server.NewServer(ctx, server.Config{
				Addr:          cfg.Server.ListenAddr,
				DefaultLayout: defaultLayout,
				MaxSteps:      cfg.MaxSteps,
				Layouts:       layouts,
				Logger:        log.New(os.Stderr, "server ", log.LstdFlags),
			})
			s.Start()
			fmt.Printf("Listening on %s\n", cfg.Server.ListenAddr)
			<-ctx.Done()
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.PersistentFlags().StringVar(&layoutFile, "layout-file", "", "Serve an additional layout from a YAML file")
	return cmd
}
