package handlers

import (
	"bytes"
	"testing"
)

func TestNewRootCmdHasAllStages(t *testing.T) {
	rootCmd := NewRootCmd()

	expected := []string{"scrape", "resolve", "popularity", "survey", "merge", "stats", "db"}
	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	rootCmd := NewRootCmd()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Did not expect an error, but got: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("batch data pipeline")) {
		t.Errorf("Expected help output to describe the pipeline, got: %s", out.String())
	}
}
