package config

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
)

var (
	//go:embed default/config.txt
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.txt"
	AppLogName        = "app.log"

	// EnvPrefix prefixes environment variables that override the file.
	EnvPrefix = "PIPESHELL"
)

type Configuration struct {
	configFs afero.Fs

	PromptColor   string `json:"promptColor" validate:"oneof=black red green yellow blue magenta cyan white none"`
	DefaultEditor string `json:"defaultEditor"`
	Timeout       int    `json:"timeout" validate:"gte=0"`
	DefaultOutput string `json:"defaultOutput" validate:"required"`
	Debug         bool   `json:"debug"`
	NotifyPath    string `json:"notifyPath"`

	// Extra holds settings the shell doesn't know about.
	Extra map[string]string `json:"-"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// PipelineTimeout is the limit on a single pipeline's run time, zero means
// no limit.
func (c *Configuration) PipelineTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// apply copies key=value settings onto the configuration.
func (c *Configuration) apply(settings map[string]string) error {
	for key, value := range settings {
		switch key {
		case "promptColor":
			c.PromptColor = value
		case "defaultEditor":
			c.DefaultEditor = value
		case "timeout":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Timeout = n
		case "defaultOutput":
			c.DefaultOutput = value
		case "debug":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			c.Debug = b
		case "notifyPath":
			c.NotifyPath = value
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

type envOverrides struct {
	Debug       *bool   `envconfig:"DEBUG"`
	Timeout     *int    `envconfig:"TIMEOUT"`
	NotifyPath  *string `envconfig:"NOTIFY_PATH"`
	PromptColor *string `envconfig:"PROMPT_COLOR"`
}

// ApplyEnv overrides settings from PIPESHELL_* environment variables.
func (c *Configuration) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.Debug != nil {
		c.Debug = *env.Debug
	}
	if env.Timeout != nil {
		c.Timeout = *env.Timeout
	}
	if env.NotifyPath != nil {
		c.NotifyPath = *env.NotifyPath
	}
	if env.PromptColor != nil {
		c.PromptColor = *env.PromptColor
	}

	return c.Validate()
}

// Default returns the built-in configuration, not backed by any directory.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}

func defaultConfig() *Configuration {
	settings, err := godotenv.Unmarshal(string(defaultConfigData))
	if err != nil {
		panic(err)
	}

	var out Configuration
	if err := out.apply(settings); err != nil {
		panic(err)
	}
	return &out
}

// ReadAppLog opens the application log for reading.
func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}
