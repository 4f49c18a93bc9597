package config

import (
	"os"

	"github.com/subosito/gotenv"
)

// LoadDotEnv loads KEY=VALUE lines from the given files if present.
// Existing environment variables take precedence and are not overwritten.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = gotenv.Load(p)
	}
}
