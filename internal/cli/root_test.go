package cli

import (
	"testing"
)

func TestCommandSurface(t *testing.T) {
	want := map[string]bool{
		"initialize": false,
		"timecourse": false,
		"end":        false,
		"status":     false,
		"serve":      false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

// The original rig was driven with capitalized verbs (Initialize, TimeCourse,
// End); the aliases keep old cron entries and muscle memory working.
func TestCapitalizedAliases(t *testing.T) {
	cases := map[string]string{
		"Initialize": "initialize",
		"TimeCourse": "timecourse",
		"End":        "end",
	}
	for alias, name := range cases {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Name() != name {
				continue
			}
			for _, a := range cmd.Aliases {
				if a == alias {
					found = true
				}
			}
		}
		if !found {
			t.Errorf("alias %q missing on %q", alias, name)
		}
	}
}

func TestRootTakesNoArgs(t *testing.T) {
	if err := rootCmd.Args(rootCmd, []string{"unexpected"}); err == nil {
		t.Error("root command accepted positional arguments")
	}
}
