package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/spf13/cobra"

	"github.com/forestrie/go-orderkey/orderkey"
)

var (
	// Global flags
	verbose  bool
	jsonOut  bool
	logLevel string

	// stdout is replaced by tests
	stdout io.Writer = os.Stdout

	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "orderkeyctl",
	Short: "Generate and compare sibling order keys",
	Long: `orderkeyctl exposes the order key algebra used to position the children
of a page or container. Keys are written as lists of byte values, for example
"55,23" or "[55 23]".`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "NOOP", "Log level (NOOP, DEBUG, INFO, ...)")
}

func initLogger() {
	logger.New(logLevel)
	log = logger.Sugar.WithServiceName("orderkeyctl")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printVerbose prints a message to stderr if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printKey writes a single key, as JSON if requested
func printKey(k orderkey.Key) error {
	if jsonOut {
		return printJSON(map[string]interface{}{"key": k})
	}
	_, err := fmt.Fprintln(stdout, k)
	return err
}

// parseKeys parses each argument as a key
func parseKeys(args []string) ([]orderkey.Key, error) {
	keys := make([]orderkey.Key, 0, len(args))
	for _, a := range args {
		k, err := orderkey.Parse(a)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
