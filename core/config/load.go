package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.txt file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	return load(afero.NewBasePathFs(afero.NewOsFs(), path))
}

func load(configFs afero.Fs) (*Configuration, error) {
	fd, err := configFs.Open(ConfigurationName)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	settings, err := godotenv.Parse(fd)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigurationName, err)
	}

	// Missing keys keep their defaults.
	out := defaultConfig()
	out.configFs = configFs
	if err := out.apply(settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigurationName, err)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
