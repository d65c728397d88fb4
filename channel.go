package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/qui/internal/channeltree"
	"github.com/tonimelisma/qui/internal/traq"
)

func newChannelCmd() *cobra.Command {
	list := newChannelListCmd()

	cmd := &cobra.Command{
		Use:     "channel",
		Aliases: []string{"ch"},
		Short:   "Browse the channel tree",
		Long: `Browse traQ channels as a directory tree.

Paths use "/" as the separator. A leading "/" starts at the top of the tree,
".." moves to the parent channel and "." stays put. Names are matched exactly.
Without a subcommand, "channel" behaves like "channel list".`,
		Args: list.Args,
		RunE: list.RunE,
	}

	// Bare "qui channel -r" must accept the list flags too.
	addListFlags(cmd)

	cmd.AddCommand(list)
	cmd.AddCommand(newChannelCdCmd())

	return cmd
}

func newChannelListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [path]",
		Aliases: []string{"ls"},
		Short:   "List the channels under a path",
		Long: `List the channels under a path, one "/name" per line.

With -f each line is the channel's absolute path; with -r every descendant
is listed, relative to the path ("./a/b") or rooted at the top ("/a/b").`,
		Example: `  qui channel list
  qui channel ls /general -r
  qui ch ls -rf /team`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChannelList,
	}

	addListFlags(cmd)

	return cmd
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("recursive", "r", false, "list every descendant, not just direct children")
	cmd.Flags().BoolP("full-path", "f", false, "print absolute paths")
}

func newChannelCdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cd <path>",
		Short: "Resolve a channel path and print its absolute path and ID",
		Args:  cobra.ExactArgs(1),
		RunE:  runChannelCd,
	}
}

func runChannelList(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}

	full, err := cmd.Flags().GetBool("full-path")
	if err != nil {
		return err
	}

	cursor, err := loadCursor(cmd.Context(), cc)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := cursor.Go(normalizePath(args[0])); err != nil {
			return err
		}
	}

	lister := channeltree.NewLister(cursor.Directory(), cc.Stdout)
	if recursive {
		return lister.ListRecursive(cursor.Current(), full)
	}

	return lister.List(cursor.Current(), full)
}

func runChannelCd(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	cursor, err := loadCursor(cmd.Context(), cc)
	if err != nil {
		return err
	}

	if err := cursor.Go(normalizePath(args[0])); err != nil {
		return err
	}

	dir := cursor.Directory()
	node := dir.Node(cursor.Current())

	path := dir.FullPath(cursor.Current())
	if path == "" {
		path = channeltree.SegmentRoot
	}

	fmt.Fprintf(cc.Stdout, "%s\t%s\n", path, node.ID)

	return nil
}

// loadCursor fetches the channel list and returns a cursor at the root of
// the resulting tree.
func loadCursor(ctx context.Context, cc *CLIContext) (*channeltree.Cursor, error) {
	client, err := newTraqClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	dir, err := fetchDirectory(ctx, client)
	if err != nil {
		return nil, err
	}

	return channeltree.NewCursor(dir), nil
}

// channelLister is the part of traq.Client the tree is built from.
type channelLister interface {
	Channels(ctx context.Context) ([]traq.Channel, error)
}

// fetchDirectory downloads every public channel and builds the tree.
func fetchDirectory(ctx context.Context, src channelLister) (*channeltree.Directory, error) {
	channels, err := src.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching channels: %w", err)
	}

	return channeltree.New(toRecords(channels)), nil
}

func toRecords(channels []traq.Channel) []channeltree.ChannelRecord {
	records := make([]channeltree.ChannelRecord, 0, len(channels))
	for i := range channels {
		ch := &channels[i]
		records = append(records, channeltree.ChannelRecord{
			ID:       ch.ID,
			Name:     ch.Name,
			ParentID: ch.ParentID,
			Children: ch.Children,
			Archived: ch.Archived,
		})
	}

	return records
}

// normalizePath brings user input to NFC so that names typed with
// decomposed kana or accents match the server's composed names.
func normalizePath(path string) string {
	return norm.NFC.String(path)
}
