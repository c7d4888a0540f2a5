package testutil

// SampleProjectName is the file name SetupProjectDir writes SampleProject to.
const SampleProjectName = "build.lua"

// SampleProject declares three tasks. default runs clean then setup; clean
// removes tmp and setup creates it.
const SampleProject = `task("clean", function(config, project)
  rmdir("tmp")
end)

task("setup", function(config, project)
  mkdir("tmp")
  write("tmp/target.txt", tostring(config.target or project.config.target))
end)

task("default", function(config, project)
  run("clean")
  run("setup", config)
end)
`

// SampleConfig seeds the project configuration and leaves every renderer
// enabled.
const SampleConfig = `verbose: false
color: never
defaults:
  target: debug
  jobs: 2
`

// SampleEnv is loaded into child process environments.
const SampleEnv = `# sample
SAMPLE_TOKEN=sample-token
`
