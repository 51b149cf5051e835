package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forestrie/go-orderkey/orderkey"
)

func init() {
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newAfterCmd())
	rootCmd.AddCommand(newBeforeCmd())
	rootCmd.AddCommand(newBetweenCmd())
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two keys, printing -1, 0 or 1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(args)
		},
	}
}

func runCompare(args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return err
	}
	c := orderkey.Compare(keys[0], keys[1])
	if jsonOut {
		return printJSON(map[string]interface{}{"a": keys[0], "b": keys[1], "result": c})
	}
	_, err = fmt.Fprintln(stdout, c)
	return err
}

func newAfterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "after <key>",
		Short: "Generate a key that sorts after the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAfter(args)
		},
	}
}

func runAfter(args []string) error {
	k, err := orderkey.Parse(args[0])
	if err != nil {
		return err
	}
	printVerbose("after %s\n", k)
	return printKey(orderkey.After(k))
}

func newBeforeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "before <key>",
		Short: "Generate a key that sorts before the given key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBefore(args)
		},
	}
}

func runBefore(args []string) error {
	k, err := orderkey.Parse(args[0])
	if err != nil {
		return err
	}
	printVerbose("before %s\n", k)
	return printKey(orderkey.Before(k))
}

func newBetweenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "between <a> <b>",
		Short: "Generate a key strictly between two keys",
		Long: `Generate a key strictly between two keys. The arguments may be given in
either order. Equal arguments produce a copy of the argument.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBetween(args)
		},
	}
}

func runBetween(args []string) error {
	keys, err := parseKeys(args)
	if err != nil {
		return err
	}
	printVerbose("between %s and %s\n", keys[0], keys[1])
	return printKey(orderkey.Between(keys[0], keys[1]))
}
