package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tsawler/go-clhost/script"
)

var showMetrics bool

var runCmd = &cobra.Command{
	Use:   "run SCRIPT...",
	Short: "Run YAML call scripts",
	Long: `Runs each script in order against one driver session. Variables do not
carry over between scripts. The command fails at the first step that fails
unexpectedly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); err == nil {
				err = cerr
			}
		}()

		for _, path := range args {
			sc, err := script.Load(path)
			if err != nil {
				return err
			}
			slog.Info("running script", "path", path, "steps", len(sc.Steps))
			if err := script.NewRunner(s.module, cmd.OutOrStdout()).Run(sc); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		if showMetrics {
			return s.metrics.WriteText(cmd.OutOrStdout())
		}
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Call operations interactively",
	Long: `Starts an interactive session. Lines look like

    p = getPlatformIDs()
    d = getDeviceIDs($p.0, DEVICE_TYPE_ALL)
    $d

Type :ops for the operation list, :sig NAME for a signature, :vars for the
variables and :quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); err == nil {
				err = cerr
			}
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "clhost (%s driver). Type :quit to exit.\n", s.module.Driver().Name())
		return script.NewRunner(s.module, cmd.OutOrStdout()).REPL("clhost> ")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replCmd)
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "print call metrics after the scripts finish")
}
