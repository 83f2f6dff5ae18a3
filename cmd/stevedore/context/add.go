package contextcmd

import (
	"fmt"

	"stevedore/cmd/stevedore/ui"
	"stevedore/config"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var host string
	var acceptNewHostKeys bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			if host == "" {
				return fmt.Errorf("--host is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cfg.Set(name, config.Context{
				Host:              host,
				AcceptNewHostKeys: acceptNewHostKeys,
			})

			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Context %s saved.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Engine target (unix:///path, tcp://host:port, ssh://[user@]host)")
	cmd.Flags().BoolVar(&acceptNewHostKeys, "accept-new-host-keys", false, "Trust unseen SSH host keys on first connect")
	return cmd
}
