package contextcmd

import (
	"fmt"

	"stevedore/cmd/stevedore/ui"
	"stevedore/config"

	"github.com/spf13/cobra"
)

func removeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if !yes {
				ok, err := ui.Confirm(fmt.Sprintf("Remove context %s?", ui.Bold(name)), "use --yes to skip")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(ui.InfoMsg("Aborted."))
					return nil
				}
			}

			if err := cfg.Remove(name); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Context %s removed.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
