package script

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/brigadier/internal/capability"
	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/session"
	"github.com/thruflo/brigadier/internal/task"
	"github.com/thruflo/brigadier/internal/testutil"
)

type fixture struct {
	sc     *Script
	s      *session.Session
	dir    string
	out    *testutil.SyncBuffer
	errOut *testutil.SyncBuffer
	exits  *testutil.ExitRecorder
}

func newFixture(t *testing.T, config map[string]interface{}) *fixture {
	t.Helper()

	dir := t.TempDir()
	log, out, errOut := testutil.NewLogger(false)
	exits := testutil.NewExitRecorder()
	s := session.New(session.Options{
		Dir:    dir,
		Logger: log,
		Lifecycle: lifecycle.New(
			lifecycle.WithExitFunc(exits.Exit),
			lifecycle.WithReporter(func(err error) { log.Error(err) }),
		),
		Capabilities: capability.Builtin(capability.Markdown),
		Config:       config,
		Stdout:       out,
		Stderr:       errOut,
	})
	sc := New(s)
	t.Cleanup(sc.Close)

	return &fixture{sc: sc, s: s, dir: dir, out: out, errOut: errOut, exits: exits}
}

func (f *fixture) load(t *testing.T, src string) {
	t.Helper()
	require.NoError(t, f.sc.LoadString("build.lua", src))
}

func TestSampleProjectBuildsDefault(t *testing.T) {
	f := newFixture(t, map[string]interface{}{"target": "release"})
	testutil.WriteTestFile(t, f.dir, testutil.SampleProjectName, []byte(testutil.SampleProject))
	testutil.WriteTestFile(t, f.dir, "tmp/stale.txt", []byte("old"))

	require.NoError(t, f.s.Define(f.sc.Definition(filepath.Join(f.dir, testutil.SampleProjectName))))

	assert.Equal(t, []string{"clean", "setup", "default"}, f.s.Names())

	_, err := f.s.Build("")
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(f.dir, "tmp", "stale.txt"))
	assert.FileExists(t, filepath.Join(f.dir, "tmp", "target.txt"))
	assert.Equal(t, 1, f.s.Ran("clean"))
	assert.Equal(t, 1, f.s.Ran("setup"))

	content, err := f.s.FS().Read("tmp/target.txt")
	require.NoError(t, err)
	assert.Equal(t, "release", content)

	testutil.AssertLines(t, f.out, "default", "  clean", "  setup")
}

func TestRunPassesConfigAndReturnsResult(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("double", function(config)
  return config.n * 2
end)
task("default", function()
  local a = run("double", {n = 4})
  result = a + run("double", {n = 1})
  count = ran("double")
end)
`)

	_, err := f.s.Build("")
	require.NoError(t, err)

	assert.Equal(t, "10", f.sc.L.GetGlobal("result").String())
	assert.Equal(t, "2", f.sc.L.GetGlobal("count").String())
}

func TestRunWithoutConfigGetsEmptyTable(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("probe", function(config)
  return next(config) == nil
end)
`)

	result, err := f.s.Run("probe", nil)
	require.NoError(t, err)
	assert.Equal(t, true, result)
}

func TestProjectConfigIsLive(t *testing.T) {
	f := newFixture(t, map[string]interface{}{"target": "debug"})
	f.load(t, `
task("default", function(config, project)
  seen = project.config.target
  project.config.target = "release"
  project.config.extra = 3
end)
`)

	_, err := f.s.Build("")
	require.NoError(t, err)

	assert.Equal(t, "debug", f.sc.L.GetGlobal("seen").String())
	assert.Equal(t, "release", f.s.Config()["target"])
	assert.Equal(t, int64(3), f.s.Config()["extra"])
}

func TestUnknownTaskKeepsNotFoundError(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("a", function() end)
task("default", function() run("missing") end)
`)

	_, err := f.s.Build("")
	require.Error(t, err)
	assert.True(t, task.IsNotFound(err))
	assert.Equal(t, "no such task missing in a|default", err.Error())
}

func TestLuaErrorBecomesScriptError(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("default", function() error("boom") end)
`)

	_, err := f.s.Build("")
	require.Error(t, err)
	assert.True(t, IsScriptError(err))
	assert.Contains(t, err.Error(), "boom")
	testutil.AssertExitCode(t, err, 1)
}

func TestFailRaisesJoinedMessage(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("default", function() fail("bad target", 2) end)
`)

	_, err := f.s.Build("")
	require.Error(t, err)
	assert.Equal(t, "bad target 2", err.Error())
}

func TestPcallSeesGoErrorMessage(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
task("default", function()
  local ok, err = pcall(run, "missing")
  caught = tostring(err)
  return ok
end)
`)

	result, err := f.s.Build("")
	require.NoError(t, err)
	assert.Equal(t, false, result)
	assert.Equal(t, "no such task missing in default", f.sc.L.GetGlobal("caught").String())
}

func TestSyntaxErrorFailsLoad(t *testing.T) {
	f := newFixture(t, nil)

	err := f.sc.LoadString("broken.lua", `task("x", function(`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load broken.lua")
}

func TestLoadMissingFile(t *testing.T) {
	f := newFixture(t, nil)

	err := f.sc.Load(filepath.Join(f.dir, "missing.lua"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestFileHelpers(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
mkdir("out/nested")
write("out/a.txt", "  hello  \n", {strip = true})
copy("out/a.txt", "out/nested/b.txt")
have = exists("out/nested/b.txt")
body = read("out/nested/b.txt")
listing = files("out/**/*.txt")
folders = dirs("out/*")
trimmed = trim("  x  ")
`)

	L := f.sc.L
	assert.Equal(t, "true", L.GetGlobal("have").String())
	assert.Equal(t, "hello", L.GetGlobal("body").String())
	assert.Equal(t, "x", L.GetGlobal("trimmed").String())

	b := &bridge{L: L}
	assert.Equal(t, []interface{}{"out/a.txt", "out/nested/b.txt"}, b.toGo(L.GetGlobal("listing")))
	assert.Equal(t, []interface{}{"out/nested"}, b.toGo(L.GetGlobal("folders")))
}

func TestCapabilities(t *testing.T) {
	f := newFixture(t, map[string]interface{}{"name": "world"})
	f.load(t, `
missing = capability("markdown") == nil
local m = capability("mustache")
greeting = m.render("Hello {{name}}!", project.snapshot())
method = m:render("{{x}}", {x = "y"})
direct = render("template", "v{{.v}}", {v = "1"})
ok, err = pcall(render, "markdown", "# x")
message = tostring(err)
`)

	L := f.sc.L
	assert.Equal(t, "true", L.GetGlobal("missing").String())
	assert.Equal(t, "Hello world!", L.GetGlobal("greeting").String())
	assert.Equal(t, "y", L.GetGlobal("method").String())
	assert.Equal(t, "v1", L.GetGlobal("direct").String())
	assert.Equal(t, "no markdown, sorry", L.GetGlobal("message").String())
}

func TestPlatformAndInspect(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
current = platform[platform.os]
shown = inspect({b = 2, a = "x"})
`)

	L := f.sc.L
	assert.Equal(t, "true", L.GetGlobal("current").String())
	assert.Equal(t, runtime.GOOS, L.GetField(L.GetGlobal("platform"), "os").String())
	assert.Equal(t, "map[a:x b:2]", L.GetGlobal("shown").String())
}

func TestLoggingGlobals(t *testing.T) {
	f := newFixture(t, nil)
	f.load(t, `
info("phase", 1)
log("detail", {k = "v"})
trace("hidden")
`)

	testutil.AssertLines(t, f.out, "phase 1", "detail map[k:v]")
}
