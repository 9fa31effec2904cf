package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kbukum/paiflow/app"
	"github.com/kbukum/paiflow/bootstrap"
	"github.com/kbukum/paiflow/event"
	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/workflow"
)

type runOptions struct {
	input     string
	inputFile string
	engine    string
	stream    bool
	persist   bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <workflow-file>",
		Short: "Execute a workflow file once and print the execution record",
		Long: `Execute a workflow file (JSON or YAML) against one input and print the
execution record as JSON. With --stream every progress event is printed as
a JSON line before the record. The command fails when the run fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			return runWorkflow(cmd, cfg, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "input text")
	f.StringVar(&opts.inputFile, "input-file", "", "read the input from a file, - for stdin")
	f.StringVarP(&opts.engine, "engine", "e", "", "engine type overriding the file's engineType")
	f.BoolVarP(&opts.stream, "stream", "s", false, "print progress events as JSON lines")
	f.BoolVar(&opts.persist, "persist", false, "keep the workflow and record in the configured store")
	return cmd
}

func runWorkflow(cmd *cobra.Command, cfg *app.Config, path string, opts *runOptions) error {
	wf, err := workflow.LoadFile(path)
	if err != nil {
		return err
	}
	if opts.engine != "" {
		wf.EngineType = opts.engine
	}
	wf.EngineType = workflow.NormalizeEngineType(wf.EngineType)
	if err := wf.Validate(); err != nil {
		return err
	}
	input, err := readInput(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}

	if !opts.persist {
		cfg.Store = store.Config{Driver: store.DriverMemory}
		wf.ID = ""
	}
	// Logs go to stderr at warn level so stdout carries only JSON.
	if cfg.Logging.Level == "" || cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		cfg.Logging.Level = "warn"
	}
	cfg.Logging.Output = "stderr"

	a, err := app.New(cfg, bootstrap.WithQuiet())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var sink event.Sink
	if opts.stream {
		sink = newLineSink(out)
	}
	rec, err := a.Execute(cmd.Context(), wf, input, sink)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}
	if rec.Status != workflow.StatusSuccess {
		return fmt.Errorf("execution %s failed: %s", rec.ID, rec.ErrorMessage)
	}
	return nil
}

func readInput(stdin io.Reader, opts *runOptions) (string, error) {
	switch {
	case opts.input != "" && opts.inputFile != "":
		return "", fmt.Errorf("use either --input or --input-file")
	case opts.inputFile == "-":
		b, err := io.ReadAll(stdin)
		return strings.TrimRight(string(b), "\n"), err
	case opts.inputFile != "":
		b, err := os.ReadFile(opts.inputFile)
		return strings.TrimRight(string(b), "\n"), err
	}
	return opts.input, nil
}

// lineSink writes each event as one JSON line.
type lineSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newLineSink(w io.Writer) *lineSink {
	return &lineSink{enc: json.NewEncoder(w)}
}

func (s *lineSink) Accept(e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(e); err != nil {
		logger.WithComponent("cli").WithError(err).Warn("event not written")
	}
}
