package config

import (
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	out.configFs = afero.NewBasePathFs(fsys, path)
	return &out, nil
}

// Default returns the built-in configuration scoped to the given directory.
// It's used when the interpreter runs without an initialized directory.
func Default(fsys afero.Fs, path string) *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewBasePathFs(fsys, path)
	return out
}
