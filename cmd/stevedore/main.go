package main

import (
	"fmt"
	"os"

	contextcmd "stevedore/cmd/stevedore/context"
	doctorcmd "stevedore/cmd/stevedore/doctor"
	servecmd "stevedore/cmd/stevedore/serve"
	"stevedore/internal/logging"
	"stevedore/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug       bool
		host        string
		contextName string
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "stevedore",
		Short:         "MCP server for the Docker engine",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Connection flags — shared by serve and doctor.
	root.PersistentFlags().StringVar(&host, "host", "", "Engine target (unix:///path, tcp://host:port, ssh://[user@]host)")
	root.PersistentFlags().StringVar(&contextName, "context", "", "Context name to use")

	root.AddCommand(servecmd.Cmd(&host, &contextName))
	root.AddCommand(doctorcmd.Cmd(&host, &contextName))
	root.AddCommand(contextcmd.Cmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
