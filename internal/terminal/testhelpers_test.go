package terminal

import (
	"os"
	"testing"
)

// setupCleanEnv controls every colour-related environment variable, setting
// only the specified ones. Tests using it must not run in parallel.
func setupCleanEnv(t *testing.T, envVars map[string]string) {
	t.Helper()

	// NO_COLOR is checked with os.LookupEnv, so empty is not the same as unset
	if value, specified := envVars["NO_COLOR"]; specified {
		t.Setenv("NO_COLOR", value)
	} else if old, exists := os.LookupEnv("NO_COLOR"); exists {
		t.Setenv("NO_COLOR", old) // registers restore on cleanup
		os.Unsetenv("NO_COLOR")
	}

	// Variables checked with os.Getenv treat empty as unset
	valueCheckedVars := []string{
		"CLICOLOR", "CLICOLOR_FORCE", "TERM",
		"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "TRAVIS", "CIRCLECI",
		"JENKINS_URL", "BUILD_NUMBER", "GITLAB_CI", "BUILDKITE", "TF_BUILD",
	}
	for _, v := range valueCheckedVars {
		if value, specified := envVars[v]; specified {
			t.Setenv(v, value)
		} else {
			t.Setenv(v, "")
		}
	}
}
