// Package env loads environment variables from a .env file in the current
// working directory. This keeps per-machine settings (node address, ports)
// out of checked-in config files.
package env

import (
	"os"
	"strings"
)

// Load reads .env and sets each KEY=VALUE pair with os.Setenv. A missing
// .env file is fine; system environment variables still apply. Lines
// starting with # are comments, and values may be wrapped in single or
// double quotes.
func Load() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on the first "=" so values may contain "=".
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		os.Setenv(key, value)
	}
}
