package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/observable/pkg/entry"
	"github.com/vango-dev/observable/pkg/observable"
)

type demoOptions struct {
	traceStructural bool
	pause           bool
	logLevel        string
}

func demoCmd() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the two-entry walk-through",
		Long: `Build a collection of two entries, print it, rename the second
entry, print it again, and list the item events the collection reported.

Examples:
  observable demo
  observable demo --trace-structural
  observable demo --pause`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.traceStructural, "trace-structural", false, "Also print collection-changed events")
	cmd.Flags().BoolVar(&opts.pause, "pause", false, "Wait for Enter between steps")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log collection internals at this level to stderr")

	return cmd
}

func runDemo(in io.Reader, out, errOut io.Writer, opts demoOptions) error {
	var collOpts []observable.Option
	if opts.logLevel != "" {
		collOpts = append(collOpts, observable.WithLogger(newLogger(errOut, opts.logLevel, "text")))
	}
	items := observable.New[*entry.Entry](collOpts...)

	var itemEvents []observable.ItemPropertyChanged[*entry.Entry]
	items.SubscribeItemPropertyChanged(func(e observable.ItemPropertyChanged[*entry.Entry]) {
		itemEvents = append(itemEvents, e)
	})
	if opts.traceStructural {
		items.SubscribeCollectionChanged(func(e observable.CollectionChanged[*entry.Entry]) {
			fmt.Fprintf(out, "Collection: %s at %d (%d items)\n", e.Action, e.Index(), len(e.Items()))
		})
	}

	items.Append(entry.New(1, "One"))
	items.Append(entry.New(2, "Two"))

	printEntries(out, items)
	wait(in, opts.pause)

	second, err := items.At(1)
	if err != nil {
		return err
	}
	second.SetName("Three")

	printEntries(out, items)
	wait(in, opts.pause)

	for _, e := range itemEvents {
		fmt.Fprintf(out, "Item: %s Field %s\n", e.Item.Name(), e.Property)
	}
	return nil
}

func printEntries(w io.Writer, items *observable.Collection[*entry.Entry]) {
	for e := range items.Values() {
		fmt.Fprintln(w, e)
	}
}

// wait blocks until a line is read from in.
func wait(in io.Reader, enabled bool) {
	if !enabled {
		return
	}
	bufio.NewReader(in).ReadString('\n')
}
