package helpers

import (
	"os"

	"github.com/mattn/go-isatty"
)

var ciEnvironmentVars = []string{
	"CI",
	"JENKINS_HOME",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"BUILDKITE",
	"DRONE",
	"TF_BUILD",           // Azure DevOps
	"BITBUCKET_COMMIT",   // Bitbucket Pipelines
	"CODEBUILD_BUILD_ID", // AWS CodeBuild
	"TEAMCITY_VERSION",
	"BUILD_NUMBER",
	"CONTINUOUS_INTEGRATION",
}

// isRunningInCI checks if we're running in a CI/CD environment
func isRunningInCI() bool {
	for _, v := range ciEnvironmentVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isTerminal reports whether fd is attached to a terminal.
var isTerminal = func(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// isInteractive checks if stdout is a terminal a person is likely reading
func isInteractive() bool {
	if isRunningInCI() {
		return false
	}
	if !isTerminal(os.Stdout.Fd()) {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// ResolveFormat turns the configured output into a concrete format.
// auto renders tables for interactive terminals and JSON everywhere else.
func ResolveFormat(configured string) OutputFormat {
	switch OutputFormat(configured) {
	case OutputFormatJSON:
		return OutputFormatJSON
	case OutputFormatTable:
		return OutputFormatTable
	}
	if isInteractive() {
		return OutputFormatTable
	}
	return OutputFormatJSON
}

// ShouldUseColor determines if colored output should be used
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isInteractive()
}
