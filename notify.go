package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/qui/internal/channeltree"
	"github.com/tonimelisma/qui/internal/config"
	"github.com/tonimelisma/qui/internal/subscribe"
)

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify <level> [path...]",
		Short: "Set the subscription level of channels",
		Long: `Set your subscription level on one or more channels.

Levels: 0 = none, 1 = subscribed (unread tracking), 2 = notified.

Paths are resolved from the top of the channel tree. When no path is given,
whitespace-separated paths are read from stdin, so the output of
"qui channel ls -rf" can be filtered and piped in. Every path is resolved
before anything is sent; one unknown path aborts the whole batch.`,
		Example: `  qui notify 2 /general /team/dev
  qui channel ls -rf /team | grep -v random | qui notify 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: runNotify,
	}
}

func runNotify(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	level, err := subscribe.ParseLevel(args[0])
	if err != nil {
		return err
	}

	paths := args[1:]
	if len(paths) == 0 {
		paths, err = readPaths(cc)
		if err != nil {
			return err
		}
	}

	for i := range paths {
		paths[i] = normalizePath(paths[i])
	}

	if len(paths) == 0 {
		cc.Statusf("No channels given.\n")
		return nil
	}

	return applyLevel(ctx, cc, level, paths)
}

func applyLevel(ctx context.Context, cc *CLIContext, level subscribe.Level, paths []string) error {
	client, err := newTraqClient(ctx, cc)
	if err != nil {
		return err
	}

	dir, err := fetchDirectory(ctx, client)
	if err != nil {
		return err
	}

	batcher := subscribe.NewBatcher(client, batchOptions(cc.Cfg), cc.Logger)

	report, err := batcher.ResolveAndApply(ctx, channeltree.NewCursor(dir), paths, level)
	if report != nil {
		for _, req := range report.Applied {
			fmt.Fprintf(cc.Stdout, "%s\t%s\n", req.Path, req.Level)
		}
	}

	if err != nil {
		return err
	}

	cc.Statusf("Set %d channel(s) to %s.\n", len(report.Applied), level)

	return nil
}

// batchOptions maps the config onto batcher pacing. Zero in the config
// means "no pacing", while the batcher reads zero as "default".
func batchOptions(cfg *config.Resolved) subscribe.Options {
	if cfg.PaceEvery == 0 || cfg.PaceDelay == 0 {
		return subscribe.Options{PaceEvery: -1}
	}

	return subscribe.Options{PaceEvery: cfg.PaceEvery, PaceDelay: cfg.PaceDelay}
}

// readPaths reads whitespace-separated paths from stdin. A terminal gets a
// hint first so the command does not look hung.
func readPaths(cc *CLIContext) ([]string, error) {
	if f, ok := cc.Stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		statusf(cc.Stderr, false, "Reading channel paths from stdin (end with Ctrl-D)...\n")
	}

	data, err := io.ReadAll(cc.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading paths from stdin: %w", err)
	}

	return strings.Fields(string(data)), nil
}
