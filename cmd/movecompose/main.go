// Command movecompose compiles a batched-call script from a JSON step
// payload read on standard input.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	movecompose "github.com/branched-services/go-movecompose"
	"github.com/branched-services/go-movecompose/engine"
	"github.com/branched-services/go-movecompose/rpc"
)

var (
	rpcURL            string
	noMetadata        bool
	emitScriptPayload bool
	engineBin         string
	verbose           bool
)

var rootCmd = &cobra.Command{
	Use:   "movecompose",
	Short: "Compose a batched-call script from JSON on stdin",
	Long: `Reads a JSON array of call steps from standard input, resolves each step's
function signature against on-chain module metadata, encodes literal
arguments, and links the calls into a single script transaction.

Prints the script as a 0x hex string, or as a script_payload JSON object
with --emit-script-payload.`,
	SilenceUsage: true,
	RunE:         runCompose,
}

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Inspect the composition-engine plugin",
}

var pluginStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the engine binary was discovered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(engine.Discover(engineBin))
	},
}

var pluginDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the engine plugin installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		report := engine.Doctor(engineBin)
		if err := printJSON(report); err != nil {
			return err
		}
		if !report.AllOK() {
			return fmt.Errorf("engine plugin is not healthy")
		}
		return nil
	},
}

func runCompose(cmd *cobra.Command, args []string) error {
	setupLogging()
	ctx := context.Background()

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read payload from stdin: %w", err)
	}

	eng, err := engine.Start(ctx, engineBin)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Debug("engine shutdown", "err", err)
		}
	}()

	fetcher := rpc.NewClient(rpcURL)
	slog.Debug("composing", "rpc_url", rpcURL, "metadata", !noMetadata)

	result, err := movecompose.Compose(ctx, payload, fetcher, eng,
		movecompose.WithMetadata(!noMetadata))
	if err != nil {
		return err
	}

	if emitScriptPayload {
		out, err := result.ScriptPayload()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Hex())
	return nil
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", rpc.DefaultBaseURL, "node REST endpoint")
	rootCmd.PersistentFlags().StringVar(&engineBin, "engine-bin", "", "explicit path to the "+engine.BinaryName+" binary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "omit source metadata from the emitted script")
	rootCmd.Flags().BoolVar(&emitScriptPayload, "emit-script-payload", false, "print a script_payload JSON object instead of raw hex")

	pluginCmd.AddCommand(pluginStatusCmd, pluginDoctorCmd)
	rootCmd.AddCommand(pluginCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
