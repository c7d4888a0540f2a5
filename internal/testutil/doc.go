// Package testutil provides shared test utilities for brigadier.
//
// This package consolidates common test helpers, fixtures, and assertions
// used across the brigadier codebase to reduce duplication and ensure
// consistent test patterns.
//
// # Fixtures
//
// The fixtures.go file provides sample project files:
//
//   - SampleProject - a Lua project declaring clean, setup and default
//   - SampleConfig - a brigadier.yaml with defaults
//   - SampleEnv - a .env file
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupProjectDir(t) - creates a temp project directory from the fixtures
//   - WriteTestFile(t, base, path, content) - writes a file in test dir
//   - NewLogger(verbose) - a colorless logger writing to SyncBuffers
//   - SyncBuffer - a bytes.Buffer safe for concurrent writers
//
// # Exit recording
//
// The exit.go file provides ExitRecorder, which stands in for os.Exit in a
// lifecycle so tests can observe exit codes.
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - AssertLines(t, buf, lines...) - compares logged lines
//   - AssertExitCode(t, err, code) - checks the exit code mapped from err
//
// # Usage
//
// Import the package in your test files:
//
//	import "github.com/thruflo/brigadier/internal/testutil"
//
// Then use the helpers:
//
//	func TestSomething(t *testing.T) {
//	    dir := testutil.SetupProjectDir(t)
//	    exits := testutil.NewExitRecorder()
//	    // ... run test ...
//	    assert.Equal(t, 3, exits.Await(t, time.Second))
//	}
package testutil
