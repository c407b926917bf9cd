package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Initialize creates the configuration directory and a default config.txt
// if either is missing, then loads the result.
func Initialize(dir string, logger *zap.Logger) (*Configuration, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return initialize(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initialize(configFs afero.Fs, logger *zap.Logger) (*Configuration, error) {
	_, err := configFs.Stat(ConfigurationName)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("Config file not found. Creating default config file.", zap.String("file", ConfigurationName))
		if err := afero.WriteFile(configFs, ConfigurationName, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	return load(configFs)
}
