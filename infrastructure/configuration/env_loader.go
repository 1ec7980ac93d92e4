package configuration

import (
	"bufio"
	"os"
	"strings"
)

// LoadEnvFromFile reads KEY=VALUE pairs from the given files (config.env and
// .env at startup) into the process environment. This is how deployments
// provide SECRET_KEY, ENCRYPTION_KEY and the DB_* settings without a config
// JSON. Variables already present in the environment win; missing files are
// skipped.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			applyEnvLine(scanner.Text())
		}
		_ = f.Close()
	}
}

// applyEnvLine handles KEY=VALUE and KEY="VALUE"; comments and blanks are
// ignored.
func applyEnvLine(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	idx := strings.Index(line, "=")
	if idx == -1 {
		return
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return
	}
	if _, exists := os.LookupEnv(key); exists {
		return
	}
	val := strings.Trim(strings.TrimSpace(line[idx+1:]), "\"'")
	_ = os.Setenv(key, val)
}
