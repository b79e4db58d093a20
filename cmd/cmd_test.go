package cmd

import (
	"bytes"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "bedrock-relay dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"run", "ask", "health", "init", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestAskRequiresMessage(t *testing.T) {
	rootCmd.SetArgs([]string{"ask"})
	defer rootCmd.SetArgs(nil)

	var errOut bytes.Buffer
	rootCmd.SetErr(&errOut)
	if err := Execute(); err == nil {
		t.Error("expected an error when no message is given")
	}
}
