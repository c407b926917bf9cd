package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig, err := godotenv.Unmarshal(string(defaultConfigData))
	assert.Nil(t, err)

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		if jsonField == "-" {
			continue
		}
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "green", cfg.PromptColor)
	assert.Equal(t, "nano", cfg.DefaultEditor)
	assert.Equal(t, 0, cfg.Timeout)
	assert.Equal(t, time.Duration(0), cfg.PipelineTimeout())
	assert.Equal(t, "output.txt", cfg.DefaultOutput)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.NotifyPath)
}

func TestConfiguration_apply(t *testing.T) {
	cases := map[string]struct {
		settings map[string]string
		wantErr  bool
		check    func(t *testing.T, c *Configuration)
	}{
		"timeout": {
			settings: map[string]string{"timeout": "30"},
			check: func(t *testing.T, c *Configuration) {
				assert.Equal(t, 30*time.Second, c.PipelineTimeout())
			},
		},
		"bad-timeout": {
			settings: map[string]string{"timeout": "soon"},
			wantErr:  true,
		},
		"bad-debug": {
			settings: map[string]string{"debug": "maybe"},
			wantErr:  true,
		},
		"unknown-kept": {
			settings: map[string]string{"favoriteShell": "ksh"},
			check: func(t *testing.T, c *Configuration) {
				assert.Equal(t, map[string]string{"favoriteShell": "ksh"}, c.Extra)
			},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := Default()
			err := cfg.apply(tc.settings)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestConfiguration_Validate(t *testing.T) {
	cfg := Default()
	cfg.PromptColor = "chartreuse"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Timeout = -1
	assert.Error(t, cfg.Validate())
}

func TestConfiguration_ApplyEnv(t *testing.T) {
	t.Setenv("PIPESHELL_DEBUG", "true")
	t.Setenv("PIPESHELL_TIMEOUT", "5")
	t.Setenv("PIPESHELL_NOTIFY_PATH", "/tmp/drop.txt")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.True(t, cfg.Debug)
	assert.Equal(t, 5, cfg.Timeout)
	assert.Equal(t, "/tmp/drop.txt", cfg.NotifyPath)
	// Unset variables leave the file's values alone.
	assert.Equal(t, "green", cfg.PromptColor)
}

func TestConfiguration_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("PIPESHELL_PROMPT_COLOR", "plaid")

	assert.Error(t, Default().ApplyEnv())
}
