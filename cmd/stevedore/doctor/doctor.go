// Package doctorcmd probes the engine connection outside an MCP session.
package doctorcmd

import (
	"fmt"
	"os"

	"stevedore/cmd/stevedore/ui"
	"stevedore/config"
	"stevedore/internal/engine"

	"github.com/spf13/cobra"
)

// Cmd connects with the same host resolution serve uses, so a passing
// doctor run means serve will reach the engine too.
func Cmd(host, contextName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the engine connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engCtx, err := config.Resolve(*contextName)
			if err != nil {
				return err
			}

			target := engCtx.Host
			if os.Getenv("DOCKER_HOST") != "" {
				// DOCKER_HOST overrides the context host; Connect reads
				// the variable when no explicit target is given.
				target = ""
			}
			if *host != "" {
				target = *host
			}

			opts := []engine.Option{engine.WithHost(target)}
			if engCtx.AcceptNewHostKeys {
				opts = append(opts, engine.WithAcceptNewHostKeys())
			}

			client, err := engine.Connect(cmd.Context(), opts...)
			if err != nil {
				fmt.Println(ui.ErrorMsg("engine unreachable"))
				return err
			}
			defer client.Close()

			version, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(ui.InfoMsg("engine diagnostic"))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("host", hostLabel(client)),
				ui.KV("engine", version.Version),
				ui.KV("api", version.APIVersion),
				ui.KV("platform", version.OS+"/"+version.Arch),
				ui.KV("config", config.Path()),
			))
			fmt.Println(ui.SuccessMsg("engine is reachable"))
			return nil
		},
	}
}

func hostLabel(client *engine.Client) string {
	if h := client.Host(); h != "" {
		return h
	}
	return "(default socket)"
}
