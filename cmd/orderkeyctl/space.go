package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/forestrie/go-orderkey/keyspace"
	"github.com/forestrie/go-orderkey/orderkey"
)

var (
	fillAt string
)

func init() {
	rootCmd.AddCommand(newEndCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newSortCmd())
	rootCmd.AddCommand(newFillCmd())
}

func newEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end [key...]",
		Short: "Generate a key that sorts after every given key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnd(args)
		},
	}
}

func runEnd(args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return err
	}
	return printKey(orderkey.AtEnd(keys))
}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [key...]",
		Short: "Generate a key that sorts before every given key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(args)
		},
	}
}

func runStart(args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return err
	}
	return printKey(orderkey.AtStart(keys))
}

func newSortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sort <key...>",
		Short: "Print keys in ascending order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(args)
		},
	}
}

func runSort(args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return err
	}
	orderkey.Sort(keys)
	if jsonOut {
		return printJSON(map[string]interface{}{"keys": keys})
	}
	for _, k := range keys {
		if _, err := fmt.Fprintln(stdout, k); err != nil {
			return err
		}
	}
	return nil
}

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <n>",
		Short: "Insert n items into an empty sibling space and print their keys",
		Long: `Insert n items into an empty sibling space and print the resulting order.

--at selects where each new item goes:
  end      append after the last item (default)
  start    prepend before the first item
  between  insert between the first and second items`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(args)
		},
	}
	cmd.Flags().StringVar(&fillAt, "at", "end", "Insertion position: end, start or between")
	return cmd
}

func runFill(args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid item count %q", args[0])
	}

	switch fillAt {
	case "end", "start", "between":
	default:
		return fmt.Errorf("unknown insertion position %q", fillAt)
	}

	s := keyspace.NewSpace(log, uuid.New())
	for i := 0; i < n; i++ {
		if err := fillOne(s); err != nil {
			return err
		}
	}

	items := s.Ordered()
	log.Infof("filled %d items at %s, longest key %d bytes", len(items), fillAt, longest(items))

	if jsonOut {
		return printJSON(map[string]interface{}{"parent": s.Parent(), "items": items})
	}
	for _, it := range items {
		if _, err := fmt.Fprintf(stdout, "%s %s\n", it.ID, it.Key); err != nil {
			return err
		}
	}
	return nil
}

func fillOne(s *keyspace.Space) error {
	var err error
	switch fillAt {
	case "end":
		_, err = s.InsertAtEnd()
	case "start":
		_, err = s.InsertAtStart()
	case "between":
		items := s.Ordered()
		if len(items) < 2 {
			_, err = s.InsertAtEnd()
			return err
		}
		_, err = s.InsertBetween(items[0].ID, items[1].ID)
	default:
		return fmt.Errorf("unknown insertion position %q", fillAt)
	}
	return err
}

func longest(items []keyspace.Item) int {
	n := 0
	for _, it := range items {
		n = max(n, len(it.Key))
	}
	return n
}
