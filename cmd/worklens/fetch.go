package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lmarchal/worklens/internal/config"
)

var fetchJiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Fetch per-tester worklogs for the trailing months",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jiraMonths < 1 {
			return fmt.Errorf("--months must be a positive integer, got %d", jiraMonths)
		}

		app := mustLoadApp(func(c *config.Config) error { return c.ValidateJira() })

		color.New(color.FgGreen).Printf("Fetching worklogs for the past %d months...\n", jiraMonths)
		bar := newSpinner("Fetching worklogs")
		defer finishBar(bar)

		return app.FetchJira(context.Background(), jiraMonths)
	},
}

var fetchSonarCmd = &cobra.Command{
	Use:   "sonar",
	Short: "Fetch per-project quality metrics for the trailing months",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sonarMonths < 1 {
			return fmt.Errorf("--months must be a positive integer, got %d", sonarMonths)
		}

		app := mustLoadApp(func(c *config.Config) error { return c.ValidateSonar() })

		color.New(color.FgGreen).Printf("Fetching project metrics for the past %d months...\n", sonarMonths)
		bar := newSpinner("Fetching metrics")
		defer finishBar(bar)

		return app.FetchSonar(context.Background(), sonarMonths)
	},
}
