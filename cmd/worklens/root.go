package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	rosterPath  string
	jiraMonths  int
	sonarMonths int
)

var rootCmd = &cobra.Command{
	Use:   "worklens",
	Short: "Fetch and chart work-log and code-quality KPIs",
	Long: `WorkLens pulls per-tester worklogs from Jira and per-project quality
metrics from SonarQube over trailing calendar-month windows, stores them as
JSON artifacts and renders monthly summary charts.`,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch data from a source and persist it under the data directory",
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Aggregate persisted artifacts and render monthly charts",
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&rosterPath, "roster", "testers_config.json", "Path to the roster file")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(plotCmd)

	fetchCmd.AddCommand(fetchJiraCmd)
	fetchCmd.AddCommand(fetchSonarCmd)
	plotCmd.AddCommand(plotJiraCmd)
	plotCmd.AddCommand(plotSonarCmd)

	fetchJiraCmd.Flags().IntVarP(&jiraMonths, "months", "m", 6, "Number of months back to fetch data for")
	fetchSonarCmd.Flags().IntVarP(&sonarMonths, "months", "m", 12, "Number of months back to fetch data for")
}
