package cliconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config under the user config dir.
	GlobalConfigDir = "captain"
)

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".captainrc.yaml", ".captainrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches the current directory for a local config file.
// Returns "" when there is none.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return firstExisting(cwd, LocalConfigFileNames), nil
}

// FindGlobalConfig returns the path to the global config file, or "" when
// there is none. On Linux the directory honours $XDG_CONFIG_HOME.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // no config dir means no global config
		return "", nil
	}
	return firstExisting(filepath.Join(configDir, GlobalConfigDir), GlobalConfigFileNames), nil
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadConfigFile loads a CLIConfig from a YAML file. SetFields lists the
// top-level keys present in the file.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	var cfg CLIConfig
	if node.Kind == 0 {
		// empty file
		cfg.Sources = make(map[string]string)
		cfg.SetFields = make(map[string]bool)
		return &cfg, nil
	}
	if err := node.Decode(&cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg.Sources = make(map[string]string)
	cfg.SetFields = topLevelKeys(&node)
	return &cfg, nil
}

// topLevelKeys returns the keys of the document's root mapping.
func topLevelKeys(doc *yaml.Node) map[string]bool {
	keys := make(map[string]bool)
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return keys
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return keys
	}
	for i := 0; i < len(root.Content); i += 2 {
		keys[root.Content[i].Value] = true
	}
	return keys
}

// ConfigError represents a configuration file that could not be parsed.
// Message carries the YAML decoder's line information.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadAll loads configuration from defaults, config files and the
// environment. Flags are merged afterwards by the caller with SourceFlag.
// A missing file is not an error; an unreadable or invalid one is.
func LoadAll() (*CLIConfig, error) {
	cfg := NewDefault()

	globalPath, err := FindGlobalConfig()
	if err != nil {
		return nil, err
	}
	if err := mergeFile(cfg, globalPath, SourceGlobal); err != nil {
		return nil, err
	}

	localPath, err := FindLocalConfig()
	if err != nil {
		return nil, err
	}
	if err := mergeFile(cfg, localPath, SourceLocal); err != nil {
		return nil, err
	}

	if err := LoadEnvConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(cfg *CLIConfig, path, source string) error {
	if path == "" {
		return nil
	}
	fileCfg, err := LoadConfigFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	MergeConfig(cfg, fileCfg, source)
	return nil
}
