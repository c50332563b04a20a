// Command avsctl is a thin batch-evaluation host around the engine
// package: it reads an EvalRequest as JSON, runs it through the core, and
// prints the resulting EvalResponse.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cellforge/avs/engine"
)

var asJSON bool

func main() {
	root := &cobra.Command{
		Use:           "avsctl",
		Short:         "Evaluate batches of formula cells",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print the raw EvalResponse JSON instead of a table")
	root.AddCommand(evalCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "avsctl: %v\n", err)
		os.Exit(1)
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate one EvalRequest and print its EvalResponse",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := inputFor(args)
			if err != nil {
				return err
			}
			defer closeFn()
			req, err := decodeRequest(r)
			if err != nil {
				return err
			}
			return printResponse(os.Stdout, engine.Eval(req))
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-evaluate an EvalRequest file every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchAndEval(args[0])
		},
	}
}

func inputFor(args []string) (io.Reader, func() error, error) {
	if len(args) == 0 {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", args[0])
	}
	return f, f.Close, nil
}

func decodeRequest(r io.Reader) (engine.EvalRequest, error) {
	var req engine.EvalRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return engine.EvalRequest{}, errors.Wrap(err, "decoding EvalRequest")
	}
	return req, nil
}

func printResponse(w io.Writer, resp engine.EvalResponse) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(resp), "encoding EvalResponse")
	}
	for _, c := range resp.Results {
		if c.Error != "" {
			fmt.Fprintf(w, "%d\tERROR\t%s\n", c.ID, c.Error)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Output)
	}
	return nil
}

// watchAndEval evaluates name once immediately, then again every time the
// filesystem reports a write to it, until the process is interrupted. Each
// revision gets a fresh environment: mid-batch state is never carried
// forward, only the decision of when to re-run.
func watchAndEval(name string) error {
	if err := evalFile(name); err != nil {
		fmt.Fprintf(os.Stderr, "avsctl: %v\n", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "starting file watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(name); err != nil {
		return errors.Wrapf(err, "watching %s", name)
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := evalFile(name); err != nil {
				fmt.Fprintf(os.Stderr, "avsctl: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "avsctl: watch error: %v\n", err)
		}
	}
}

func evalFile(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	req, err := decodeRequest(f)
	if err != nil {
		return err
	}
	return printResponse(os.Stdout, engine.Eval(req))
}
