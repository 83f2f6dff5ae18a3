package contextcmd

import (
	"fmt"
	"sort"

	"stevedore/cmd/stevedore/ui"
	"stevedore/config"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available contexts",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if len(cfg.Contexts) == 0 {
				fmt.Println(ui.InfoMsg("No contexts configured."))
				return nil
			}

			names := make([]string, 0, len(cfg.Contexts))
			for name := range cfg.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			var rows [][]string
			for _, name := range names {
				c := cfg.Contexts[name]

				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}

				host := c.Host
				if host == "" {
					host = "(default socket)"
				}

				newKeys := ""
				if c.AcceptNewHostKeys {
					newKeys = "accept-new"
				}

				rows = append(rows, []string{current, name, host, newKeys})
			}

			fmt.Println(ui.Table([]string{"", "NAME", "HOST", "HOST KEYS"}, rows))
			return nil
		},
	}
}
