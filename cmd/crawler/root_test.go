package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrawlCommand_RequiresURL(t *testing.T) {
	cmd := crawlCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestCrawlCommand_Flags(t *testing.T) {
	cmd := crawlCommand()
	for _, name := range []string{"depth", "domains", "filters", "links-out", "content-out", "workers"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "3", cmd.Flags().Lookup("depth").DefValue)
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "crawl")
	assert.Contains(t, names, "serve-worker")
}
