package commands

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"bash completion", []string{"completion", "bash"}, false},
		{"zsh completion", []string{"completion", "zsh"}, false},
		{"fish completion", []string{"completion", "fish"}, false},
		{"powershell completion", []string{"completion", "powershell"}, false},
		{"invalid shell", []string{"completion", "invalid"}, true},
		{"no shell specified", []string{"completion"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out, "bitgrid") {
				t.Errorf("%s script does not mention bitgrid", tt.args[1])
			}
		})
	}
}

func TestCompletionValidArgs(t *testing.T) {
	want := []string{"bash", "fish", "powershell", "zsh"}

	got := append([]string(nil), completionCmd.ValidArgs...)
	sort.Strings(got)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ValidArgs = %v, want %v in any order", completionCmd.ValidArgs, want)
	}
}

func TestFlagCompletions(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{cobra.ShellCompRequestCmd, "run", "--device", ""}, "cuda"},
		{[]string{cobra.ShellCompRequestCmd, "run", "--pattern", ""}, "checker"},
		{[]string{cobra.ShellCompRequestCmd, "show", "-p", ""}, "gray"},
	}

	for _, tt := range tests {
		resetFlags(rootCmd)
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(tt.args)
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("completion request %v failed: %v", tt.args, err)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("completions for %v missing %q:\n%s", tt.args, tt.want, out.String())
		}
	}
}
