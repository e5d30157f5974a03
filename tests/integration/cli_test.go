// CLI integration tests for keeper.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestMain builds the keeper binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "keeper-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "keeper")
	SetKeeperBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/keeper")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{
			Err:    err,
			Output: string(output),
		})
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)

	os.Exit(code)
}

// Test1_InitializeKeeper verifies keeper initialization.
func Test1_InitializeKeeper(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunKeeper("init")

	if result.Stdout == "" {
		t.Error("expected init output message")
	}
	if !strings.Contains(result.Stdout, "initialized") {
		t.Errorf("expected initialization message, got %q", result.Stdout)
	}

	if _, err := os.Stat(env.DataDir); os.IsNotExist(err) {
		t.Error("data directory not created")
	}

	dbFile := filepath.Join(env.DataDir, "typekeep.db")
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		t.Error("typekeep.db not created")
	}
}

// Test2_VersionCommand verifies the version subcommand output.
func Test2_VersionCommand(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunKeeper("version")

	if !strings.HasPrefix(result.Stdout, "keeper v") {
		t.Errorf("expected version output, got %q", result.Stdout)
	}
}

// Test3_InitIsIdempotent verifies a second init succeeds against the same
// directories.
func Test3_InitIsIdempotent(t *testing.T) {
	env := NewTestEnv(t)

	env.MustRunKeeper("init")
	result := env.MustRunKeeper("init")

	if result.ExitCode != 0 {
		t.Errorf("second init failed with exit code %d", result.ExitCode)
	}
}

// Test4_ExportEmptyStore verifies exporting a store with no registered types.
func Test4_ExportEmptyStore(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKeeper("init")

	outDir := filepath.Join(env.TempDir, "export")
	result := env.MustRunKeeper("export", "--out", outDir)

	if !strings.Contains(result.Stdout, "Exported 0 types and 0 objects") {
		t.Errorf("unexpected export output: %q", result.Stdout)
	}

	typesFile := filepath.Join(outDir, "types.jsonl")
	info, err := os.Stat(typesFile)
	if err != nil {
		t.Fatalf("types.jsonl not written: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty types.jsonl, got %d bytes", info.Size())
	}
}

// Test5_ExportJSONSummary verifies the --json summary output of export.
func Test5_ExportJSONSummary(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKeeper("init")

	outDir := filepath.Join(env.TempDir, "export")
	result := env.MustRunKeeper("export", "--out", outDir, "--json")

	summary := ParseJSON[ExportSummary](t, result.Stdout)
	if summary.Types != 0 {
		t.Errorf("expected 0 types, got %d", summary.Types)
	}
	if summary.Objects != 0 {
		t.Errorf("expected 0 objects, got %d", summary.Objects)
	}
	if summary.Dir != outDir {
		t.Errorf("expected dir %q, got %q", outDir, summary.Dir)
	}
}

// Test6_UnknownCommandFails verifies an unknown subcommand exits non-zero.
func Test6_UnknownCommandFails(t *testing.T) {
	env := NewTestEnv(t)

	result := env.RunKeeper("no-such-command")

	if result.ExitCode == 0 {
		t.Error("expected non-zero exit code for unknown command")
	}
}
