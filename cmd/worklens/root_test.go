package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMonthsDefaultsAreIndependent(t *testing.T) {
	jiraFlag := fetchJiraCmd.Flags().Lookup("months")
	require.NotNil(t, jiraFlag)
	assert.Equal(t, "6", jiraFlag.DefValue)

	sonarFlag := fetchSonarCmd.Flags().Lookup("months")
	require.NotNil(t, sonarFlag)
	assert.Equal(t, "12", sonarFlag.DefValue)

	// each subcommand binds its own variable, so registering the sonar
	// flag must not overwrite the jira default
	assert.Equal(t, 6, jiraMonths)
	assert.Equal(t, 12, sonarMonths)
}
