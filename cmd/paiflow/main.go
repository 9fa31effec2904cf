// Command paiflow serves, runs and validates AI workflow graphs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/paiflow/app"
)

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "paiflow",
		Short:         "Workflow engine for LLM and speech pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to config.yml")
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "path to .env file")

	root.AddCommand(
		newServeCmd(opts),
		newRunCmd(opts),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func (o *rootOptions) load() (*app.Config, error) {
	cfg, err := app.LoadConfig(o.configFile, o.envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
