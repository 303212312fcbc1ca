// Package main provides a headless CLI for analyzing BimmerLink CSV logs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/bimmer_log_analyzer_go/internal/config"
	"github.com/user/bimmer_log_analyzer_go/internal/logging"
	"github.com/user/bimmer_log_analyzer_go/internal/pipeline"
	"github.com/user/bimmer_log_analyzer_go/internal/sensorlist"
)

var (
	configPath     string
	reportPath     string
	sensorListPath string
	workbook       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bimmerlog",
		Short: "Chart BimmerLink CSV log exports",
		Long: `bimmerlog reads a log exported by BimmerLink, writes the list of
recorded signals to a text file and renders a PDF report with one chart
per signal against engine speed.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: bimmerlog.yaml next to the executable)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [log.csv]",
		Short: "Write the sensor list and the PDF report",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&reportPath, "report", "r", "", "PDF report path (default: derived from the log name)")
	analyzeCmd.Flags().StringVarP(&sensorListPath, "sensor-list", "s", "", "Sensor list path (default: derived from the log name)")
	analyzeCmd.Flags().BoolVar(&workbook, "workbook", false, "Also write an .xlsx summary of the signal statistics")

	columnsCmd := &cobra.Command{
		Use:   "columns [log.csv]",
		Short: "Print the trimmed column names of a log",
		Args:  cobra.ExactArgs(1),
		RunE:  runColumns,
	}

	rootCmd.AddCommand(analyzeCmd, columnsCmd)
	return rootCmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if workbook {
		cfg.Output.ExportWorkbook = true
	}

	logger, err := logging.NewLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	runner := pipeline.NewRunner(cfg, logger.Named("pipeline"))
	paths, err := runner.DerivePaths(args[0])
	if err != nil {
		return err
	}
	if reportPath != "" {
		paths.Report = reportPath
	}
	if sensorListPath != "" {
		paths.SensorList = sensorListPath
	}

	res := runner.Run(paths)
	if !res.OK() {
		logger.Debug("analysis failed", zap.Error(res.Err))
		return res.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message())
	return nil
}

func runColumns(cmd *cobra.Command, args []string) error {
	names, err := sensorlist.Names(args[0])
	if err != nil {
		return err
	}
	return sensorlist.WriteTo(cmd.OutOrStdout(), names)
}

