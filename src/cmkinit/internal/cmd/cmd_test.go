package cmd

import "testing"

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"build", "history", "inspect", "serve", "version"}

	commands := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		commands[c.Name()] = true
	}
	for _, name := range expected {
		if !commands[name] {
			t.Errorf("expected subcommand %q not found on root", name)
		}
	}
}

func TestBuildCmd_RequiresOutFlag(t *testing.T) {
	flag := buildCmd.Flags().Lookup("out")
	if flag == nil {
		t.Fatal("expected --out flag on build")
	}
}

func TestBuildCmd_HasBuilderFlags(t *testing.T) {
	for _, name := range []string{"output", "compression", "kernel", "busybox", "clean-on-error"} {
		if buildCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag on build", name)
		}
	}
}

func TestInspectCmd_RequiresArg(t *testing.T) {
	if err := inspectCmd.Args(inspectCmd, []string{}); err == nil {
		t.Error("expected error for missing build id arg")
	}
	if err := inspectCmd.Args(inspectCmd, []string{"some-id"}); err != nil {
		t.Errorf("unexpected error for one arg: %v", err)
	}
}

func TestVersionInfo_Defaults(t *testing.T) {
	if Version != "dev" {
		t.Errorf("expected default Version 'dev', got %q", Version)
	}
	if BuildDate != "unknown" {
		t.Errorf("expected default BuildDate 'unknown', got %q", BuildDate)
	}
}
