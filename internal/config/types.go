// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// HostAuto lets the loader detect the host kind at startup.
	HostAuto HostMode = ""
	// HostNative forces the full-capability host profile.
	HostNative HostMode = "native"
	// HostSandboxed forces the sandboxed (registry + allowlisted URL) profile.
	HostSandboxed HostMode = "sandboxed"
	// HostControlBus forces the registry-only control-bus profile.
	HostControlBus HostMode = "controlbus"

	// LogDebug enables debug logging.
	LogDebug LogLevel = "debug"
	// LogInfo enables informational logging.
	LogInfo LogLevel = "info"
	// LogWarn enables warning logging (the default).
	LogWarn LogLevel = "warn"
	// LogError enables error-only logging.
	LogError LogLevel = "error"
)

var (
	// ErrInvalidHostMode is returned when a HostMode value is not recognized.
	ErrInvalidHostMode = errors.New("invalid host mode")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidRegistryURL is returned when a RegistryURL is not an http(s) URL.
	ErrInvalidRegistryURL = errors.New("invalid registry URL")
	// ErrInvalidCacheSize is returned when the cache size is negative.
	ErrInvalidCacheSize = errors.New("invalid cache size")
	// ErrInvalidPolicyPattern is the sentinel error wrapped by InvalidPolicyPatternError.
	ErrInvalidPolicyPattern = errors.New("invalid policy pattern")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// HostMode overrides host-kind detection. The zero value means
	// "detect at startup".
	HostMode string

	// InvalidHostModeError is returned when a HostMode value is not recognized.
	// It wraps ErrInvalidHostMode for errors.Is() compatibility.
	InvalidHostModeError struct {
		Value HostMode
	}

	// LogLevel selects the loader's logging verbosity.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// RegistryURL is the package-index base URL. The zero value ("")
	// means "use the built-in default registry".
	RegistryURL string

	// InvalidRegistryURLError is returned when a RegistryURL is non-empty
	// but not an http(s) URL. It wraps ErrInvalidRegistryURL for errors.Is().
	InvalidRegistryURLError struct {
		Value RegistryURL
	}

	// InvalidPolicyPatternError is returned when an allow or block glob
	// does not parse. It wraps ErrInvalidPolicyPattern for errors.Is().
	InvalidPolicyPatternError struct {
		// Pattern is the offending glob.
		Pattern string
		// List names which list it came from ("allow" or "block").
		List string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// RegistryConfig configures the registry resolution strategy.
	RegistryConfig struct {
		// BaseURL is the package-index base URL.
		BaseURL RegistryURL `json:"base_url" mapstructure:"base_url"`
		// IndexFile is the artifact fetched from a package directory.
		IndexFile string `json:"index_file" mapstructure:"index_file"`
	}

	// PolicyConfig holds the security policy glob lists.
	PolicyConfig struct {
		// Allow lists specifier patterns permitted to load. Empty means
		// allow-all; non-empty means default-deny.
		Allow []string `json:"allow" mapstructure:"allow"`
		// Block lists specifier patterns refused outright. Block wins
		// over allow.
		Block []string `json:"block" mapstructure:"block"`
	}

	// CacheConfig configures the resolved-location cache.
	CacheConfig struct {
		// Size bounds the in-memory cache; 0 means the package default.
		Size int `json:"size" mapstructure:"size"`
		// PersistPath, when set, persists the cache across runs as TOML.
		PersistPath string `json:"persist_path" mapstructure:"persist_path"`
	}

	// LogConfig configures loader logging.
	LogConfig struct {
		// Level is the minimum level emitted.
		Level LogLevel `json:"level" mapstructure:"level"`
	}

	// Config holds the module-loader configuration.
	Config struct {
		// Registry configures the registry strategy.
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		// Policy configures allow/block specifier patterns.
		Policy PolicyConfig `json:"policy" mapstructure:"policy"`
		// Host overrides host-kind detection.
		Host HostMode `json:"host" mapstructure:"host"`
		// ProjectMarkers identify a project root for root: specifiers.
		ProjectMarkers []string `json:"project_markers" mapstructure:"project_markers"`
		// Cache configures the resolved-location cache.
		Cache CacheConfig `json:"cache" mapstructure:"cache"`
		// Log configures loader logging.
		Log LogConfig `json:"log" mapstructure:"log"`
	}
)

// String returns the string representation of the HostMode.
func (m HostMode) String() string { return string(m) }

// IsValid returns whether the HostMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m HostMode) IsValid() (bool, []error) {
	switch m {
	case HostAuto, HostNative, HostSandboxed, HostControlBus:
		return true, nil
	default:
		return false, []error{&InvalidHostModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidHostModeError.
func (e *InvalidHostModeError) Error() string {
	return fmt.Sprintf("invalid host mode %q (valid: native, sandboxed, controlbus)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidHostModeError) Unwrap() error { return ErrInvalidHostMode }

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the RegistryURL.
func (u RegistryURL) String() string { return string(u) }

// IsValid returns whether the RegistryURL is empty (use default) or an
// http(s) URL, and a list of validation errors if it is not.
func (u RegistryURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	if strings.HasPrefix(string(u), "http://") || strings.HasPrefix(string(u), "https://") {
		return true, nil
	}
	return false, []error{&InvalidRegistryURLError{Value: u}}
}

// Error implements the error interface for InvalidRegistryURLError.
func (e *InvalidRegistryURLError) Error() string {
	return fmt.Sprintf("invalid registry URL %q: must be an http(s) URL", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidRegistryURLError) Unwrap() error { return ErrInvalidRegistryURL }

// Error implements the error interface for InvalidPolicyPatternError.
func (e *InvalidPolicyPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern %q", e.List, e.Pattern)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidPolicyPatternError) Unwrap() error { return ErrInvalidPolicyPattern }

// IsValid returns whether the PolicyConfig's globs all parse.
func (p PolicyConfig) IsValid() (bool, []error) {
	var errs []error
	for _, pat := range p.Allow {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, &InvalidPolicyPatternError{Pattern: pat, List: "allow"})
		}
	}
	for _, pat := range p.Block {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, &InvalidPolicyPatternError{Pattern: pat, List: "block"})
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// IsValid returns whether the CacheConfig has valid fields.
func (c CacheConfig) IsValid() (bool, []error) {
	if c.Size < 0 {
		return false, []error{fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Size)}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
// It delegates to Registry.BaseURL, Policy, Host, Cache, and Log.Level;
// ProjectMarkers and IndexFile need no validation beyond the schema.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Registry.BaseURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Policy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Host.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Cache.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Log.Level.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Registry: RegistryConfig{
			BaseURL:   "", // Built-in default registry
			IndexFile: "index.js",
		},
		Policy: PolicyConfig{
			Allow: []string{},
			Block: []string{},
		},
		Host:           HostAuto,
		ProjectMarkers: []string{".git", "package.json", "oriomod.json"},
		Cache: CacheConfig{
			Size:        256,
			PersistPath: "", // Memory-only unless set
		},
		Log: LogConfig{
			Level: LogWarn,
		},
	}
}
