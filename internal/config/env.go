package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// EnvPrefix marks environment variables that override configuration values.
// Nested keys are separated by a double underscore: LUXXIT_TOOLS__BUILD_TIMEOUT=900.
const EnvPrefix = "LUXXIT_"

// applyEnv decodes LUXXIT_* variables onto cfg. Values are weakly typed so "900" reaches
// int fields and comma separated values reach string slices.
func applyEnv(cfg *Config, environ []string) error {
	overrides := envOverrides(environ)
	if len(overrides) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(overrides); err != nil {
		return fmt.Errorf("invalid %s environment override: %w", EnvPrefix, err)
	}
	return nil
}

// envOverrides folds LUXXIT_A__B=v into {"a": {"b": "v"}}.
func envOverrides(environ []string) map[string]any {
	out := make(map[string]any)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "__")

		node := out
		for _, part := range path[:len(path)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[path[len(path)-1]] = value
	}
	return out
}
