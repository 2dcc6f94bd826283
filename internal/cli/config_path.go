package cli

import (
	"flowtap/internal/config"
)

// loadConfig resolves and loads the project config. An explicit path wins;
// otherwise the config file is searched for upward from the working
// directory. A missing config is not an error: commands fall back to
// normalized defaults plus their own flags.
func loadConfig(explicitPath string) (config.Config, error) {
	if explicitPath != "" {
		return config.Load(explicitPath)
	}
	path, err := config.FindConfigPath("")
	if err != nil {
		cfg := config.Config{Version: 1}
		config.Normalize(&cfg)
		return cfg, nil
	}
	return config.Load(path)
}
