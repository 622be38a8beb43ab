package procutil

import (
	"os"
	"strings"
)

// EnvVar is the name of an environment variable.
type EnvVar string

const (
	// THRIFTDEPS_LOG_LEVEL is the default of the --log_level flag.
	THRIFTDEPS_LOG_LEVEL = EnvVar("THRIFTDEPS_LOG_LEVEL")
	// THRIFTDEPS_CACHE_FILE is the default of the --cache_file flag.
	THRIFTDEPS_CACHE_FILE = EnvVar("THRIFTDEPS_CACHE_FILE")
	// THRIFTDEPS_SHOW_PROGRESS is the default of the --progress flag.
	THRIFTDEPS_SHOW_PROGRESS = EnvVar("THRIFTDEPS_SHOW_PROGRESS")
)

func LookupBoolEnv(name EnvVar, defaultValue bool) bool {
	if val, ok := os.LookupEnv(string(name)); ok {
		switch strings.ToLower(val) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
	}
	return defaultValue
}

func LookupEnv(name EnvVar) (string, bool) {
	return os.LookupEnv(string(name))
}

// LookupEnvOr returns the value of the variable, or defaultValue if it is
// unset or empty.
func LookupEnvOr(name EnvVar, defaultValue string) string {
	if val, ok := os.LookupEnv(string(name)); ok && val != "" {
		return val
	}
	return defaultValue
}
