// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/oriolang/modload/pkg/cueutil"
)

// ValidateFile checks a configuration file without loading it into the
// running process: the file is decoded against the #Config schema and
// then run through the same field validation the loader applies. The
// decoded configuration is returned so callers can inspect it.
//
// Unlike loadWithOptions, this decodes straight to Config rather than
// merging through Viper, so defaults and environment overrides do not
// apply: the file is judged on its own content.
func ValidateFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecodeString[Config](configSchema, data, "#Config",
		cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}

	cfg := result.Value
	if valid, errs := cfg.IsValid(); !valid {
		var invalid *InvalidConfigError
		if errors.As(errs[0], &invalid) && len(invalid.FieldErrors) > 0 {
			first := invalid.FieldErrors[0]
			return nil, &cueutil.ValidationError{
				FilePath: path,
				CUEPath:  fieldPath(first),
				Message:  first.Error(),
			}
		}
		return nil, errs[0]
	}

	return cfg, nil
}

// fieldPath maps a field validation error to the configuration path it
// refers to, for ValidationError messages.
func fieldPath(err error) cueutil.CUEPath {
	switch {
	case errors.Is(err, ErrInvalidHostMode):
		return "host"
	case errors.Is(err, ErrInvalidLogLevel):
		return "log.level"
	case errors.Is(err, ErrInvalidRegistryURL):
		return "registry.base_url"
	case errors.Is(err, ErrInvalidCacheSize):
		return "cache.size"
	case errors.Is(err, ErrInvalidPolicyPattern):
		var pattern *InvalidPolicyPatternError
		if errors.As(err, &pattern) {
			return cueutil.CUEPath("policy." + pattern.List)
		}
		return "policy"
	default:
		return ""
	}
}
