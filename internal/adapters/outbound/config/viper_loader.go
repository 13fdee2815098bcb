package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/openkraft/encmend/internal/domain"
)

const (
	fileName  = ".encmend.yaml"
	envPrefix = "ENCMEND"
)

// ViperLoader implements domain.ConfigLoader. Values come from defaults,
// then .encmend.yaml, then ENCMEND_* environment variables.
type ViperLoader struct{}

// New creates a ViperLoader.
func New() *ViperLoader { return &ViperLoader{} }

// Load reads configuration from path. An empty path or a directory means
// "look for .encmend.yaml there" and falls back to defaults when the file
// does not exist. An explicit file path must exist.
func (l *ViperLoader) Load(path string) (domain.Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := false
	switch info, err := os.Stat(path); {
	case path == "":
		v.AddConfigPath(".")
	case err == nil && info.IsDir():
		v.AddConfigPath(path)
	default:
		explicit = true
		v.SetConfigFile(path)
	}
	if !explicit {
		v.SetConfigName(strings.TrimSuffix(fileName, filepath.Ext(fileName)))
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || explicit {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", configName(v, path), err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decoding %s: %w", configName(v, path), err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", configName(v, path), err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := domain.DefaultConfig()
	v.SetDefault("target_dir", d.TargetDir)
	v.SetDefault("extension", d.Extension)
	v.SetDefault("backup_dir", d.BackupDir)
	v.SetDefault("candidates", d.Candidates)
	v.SetDefault("sample_lines", d.SampleLines)
	v.SetDefault("dictionary", d.Dictionary)
	v.SetDefault("contextual.enabled", d.Contextual.Enabled)
	v.SetDefault("contextual.default_char", d.Contextual.DefaultChar)
	v.SetDefault("contextual.statement_elements", d.Contextual.StatementElements)
	v.SetDefault("contextual.comments", d.Contextual.Comments)
}

func configName(v *viper.Viper, path string) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	if path != "" {
		return path
	}
	return fileName
}
