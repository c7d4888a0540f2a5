package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/brigadier/internal/capability"
	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/project"
	"github.com/thruflo/brigadier/internal/task"
	"github.com/thruflo/brigadier/internal/testutil"
)

type fixture struct {
	s      *Session
	out    *testutil.SyncBuffer
	errOut *testutil.SyncBuffer
	exits  *testutil.ExitRecorder
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	log, out, errOut := testutil.NewLogger(true)
	exits := testutil.NewExitRecorder()
	if opts.Dir == "" {
		opts.Dir = t.TempDir()
	}
	opts.Logger = log
	opts.Lifecycle = lifecycle.New(
		lifecycle.WithExitFunc(exits.Exit),
		lifecycle.WithReporter(func(err error) { log.Error(err) }),
	)
	opts.Stdout = out
	opts.Stderr = errOut

	return &fixture{s: New(opts), out: out, errOut: errOut, exits: exits}
}

func cleanSetupDefault(s *Session) error {
	s.Task("clean", func(*project.Context, task.Config) (interface{}, error) {
		return nil, s.FS().Rmdir("tmp")
	})
	s.Task("setup", func(*project.Context, task.Config) (interface{}, error) {
		return nil, s.FS().Mkdir("tmp")
	})
	s.Task("default", func(*project.Context, task.Config) (interface{}, error) {
		if _, err := s.Run("clean", nil); err != nil {
			return nil, err
		}
		return s.Run("setup", nil)
	})
	return nil
}

func TestBuildDefaultRunsCleanThenSetup(t *testing.T) {
	f := newFixture(t, Options{})
	dir := f.s.Project().Dir()
	testutil.WriteTestFile(t, dir, "tmp/stale.txt", []byte("old"))

	require.NoError(t, f.s.Define(cleanSetupDefault))

	_, err := f.s.Build("")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "tmp"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoFileExists(t, filepath.Join(dir, "tmp", "stale.txt"))

	assert.Equal(t, 1, f.s.Ran("clean"))
	assert.Equal(t, 1, f.s.Ran("setup"))
	assert.Equal(t, 1, f.s.Ran("default"))

	assert.Equal(t, 0, f.s.Finish(nil))
	testutil.AssertContainsLine(t, f.out, "default")
	testutil.AssertContainsLine(t, f.out, "  clean")
	testutil.AssertContainsLine(t, f.out, "  setup")
	testutil.AssertContainsLine(t, f.out, "exit 0")
}

func TestBuildNonexistentTaskListsNames(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.s.Define(cleanSetupDefault))

	_, err := f.s.Build("nonexistent")
	require.Error(t, err)
	assert.True(t, task.IsNotFound(err))

	assert.Equal(t, 1, f.s.Finish(err))
	testutil.AssertLines(t, f.errOut, "no such task nonexistent in clean|setup|default")

	exited, code := f.s.Lifecycle().Exited()
	assert.True(t, exited)
	assert.Equal(t, 1, code)
}

func TestBuildPassesProjectConfig(t *testing.T) {
	f := newFixture(t, Options{Config: map[string]interface{}{"target": "release"}})

	var got task.Config
	f.s.Task("default", func(ctx *project.Context, cfg task.Config) (interface{}, error) {
		got = cfg
		ctx.Set("built", true)
		return nil, nil
	})

	_, err := f.s.Build("")
	require.NoError(t, err)
	assert.Equal(t, task.Config{"target": "release"}, got)
	assert.Equal(t, true, f.s.Config()["built"])
}

func TestFinishKeepsEarlierExitCode(t *testing.T) {
	f := newFixture(t, Options{})

	f.s.Lifecycle().Exit(5)
	assert.Equal(t, 5, f.exits.Await(t, time.Second))

	assert.Equal(t, 5, f.s.Finish(nil))
	testutil.AssertLines(t, f.errOut)
}

func TestFailJoinsArguments(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.s.Fail("missing", "target", 2)
	require.Error(t, err)
	assert.Equal(t, "missing target 2", err.Error())
	testutil.AssertExitCode(t, err, 1)
}

func TestCapabilities(t *testing.T) {
	f := newFixture(t, Options{Capabilities: capability.Builtin(capability.Markdown)})

	_, ok := f.s.Capability(capability.Markdown)
	assert.False(t, ok)

	_, ok = f.s.Capability(capability.Mustache)
	assert.True(t, ok)

	out, err := f.s.Render(capability.Mustache, "v{{version}}", f.s.Config())
	require.NoError(t, err)
	assert.Equal(t, "v", out)

	_, err = f.s.Render(capability.Markdown, "# x", nil)
	assert.True(t, capability.IsUnavailable(err))
}

func TestSessionIDIsTraced(t *testing.T) {
	f := newFixture(t, Options{})

	require.NotEmpty(t, f.s.ID)
	testutil.AssertContainsLine(t, f.out, "session "+f.s.ID)
}
