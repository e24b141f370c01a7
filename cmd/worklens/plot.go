package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lmarchal/worklens/internal/config"
)

var plotJiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Render monthly worklog charts from persisted artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := mustLoadApp(func(c *config.Config) error { return nil })
		return app.PlotJira(os.Stdout)
	},
}

var plotSonarCmd = &cobra.Command{
	Use:   "sonar",
	Short: "Render metric evolution and effort charts from persisted artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := mustLoadApp(func(c *config.Config) error { return nil })
		return app.PlotSonar(os.Stdout)
	},
}
