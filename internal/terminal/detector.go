package terminal

import "strings"

// ciEnvVars contains common CI environment variables
var ciEnvVars = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"TRAVIS",                 // Travis CI
	"CIRCLECI",               // Circle CI
	"JENKINS_URL",            // Jenkins
	"BUILD_NUMBER",           // Jenkins/TeamCity/etc
	"GITLAB_CI",              // GitLab CI
	"APPVEYOR",               // AppVeyor
	"BUILDKITE",              // Buildkite
	"DRONE",                  // Drone CI
	"TF_BUILD",               // Azure DevOps
}

// IsCI reports whether env looks like a CI job. CI=false, CI=0 and CI=no
// do not count.
func IsCI(env Env) bool {
	for _, key := range ciEnvVars {
		value := getenv(env, key)
		if value == "" {
			continue
		}
		if key == "CI" {
			return isCITruthy(value)
		}
		return true
	}
	return false
}

func isCITruthy(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	return lower != "false" && lower != "0" && lower != "no"
}

// IsInteractive reports whether fd should be treated as an interactive
// terminal: forced options first, then CI detection, then a TTY check.
func IsInteractive(env Env, opts Options, fd uintptr) bool {
	if opts.ForceInteractive {
		return true
	}
	if opts.ForceNonInteractive {
		return false
	}
	if IsCI(env) {
		return false
	}
	return env.IsTerminal(fd)
}
