// SPDX-License-Identifier: MPL-2.0

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/oriolang/modload/internal/config"
	"github.com/oriolang/modload/internal/issue"
	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/hostenv"
	"github.com/oriolang/modload/pkg/modload"
	"github.com/oriolang/modload/pkg/policy"
)

type (
	// Options configures App construction. Materializer is required;
	// everything else has a sensible default.
	Options struct {
		// Config is the loader configuration. Nil means "load from the
		// platform config directory" (falling back to pure defaults
		// when no config file exists).
		Config *config.Config

		// ConfigFile forces loading configuration from a specific file.
		// Ignored when Config is set.
		ConfigFile string

		// Materializer turns fetched module source into live callables.
		// It is implemented by the embedding script evaluator. With a
		// nil Materializer the App can still resolve specifiers and
		// inspect dependency graphs, but Require fails at fetch time.
		Materializer fetch.Materializer

		// Binder receives committed exports. Nil means exports are
		// tracked in the registry only.
		Binder modload.Binder

		// Logger overrides the logger derived from the config log level.
		Logger *log.Logger
	}

	// App wires configuration, host detection, security policy, and
	// transports into a ready-to-use module loader.
	App struct {
		cfg    *config.Config
		loader *modload.Loader
		logger *log.Logger
	}
)

// New builds an App from options, loading configuration when none is
// provided.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: opts.ConfigFile})
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := opts.Logger
	if logger == nil {
		logger = newLogger(cfg.Log.Level)
	}

	pol, err := policy.New(cfg.Policy.Allow, cfg.Policy.Block)
	if err != nil {
		return nil, fmt.Errorf("building security policy: %w", err)
	}

	profile, err := hostProfile(cfg.Host)
	if err != nil {
		return nil, err
	}
	logger.Debug("host profile selected", "kind", profile.Kind)

	fetcher := fetch.Default(opts.Materializer)

	resolver, err := modload.NewResolver(modload.ResolverOptions{
		Profile:           profile,
		Policy:            pol,
		Prober:            fetcher,
		Logger:            logger,
		RegistryBaseURL:   string(cfg.Registry.BaseURL),
		RegistryIndexFile: cfg.Registry.IndexFile,
		ProjectMarkers:    cfg.ProjectMarkers,
		CacheSize:         cfg.Cache.Size,
		CachePersistPath:  cfg.Cache.PersistPath,
	})
	if err != nil {
		return nil, err
	}

	loader, err := modload.NewLoader(modload.LoaderOptions{
		Resolver: resolver,
		Fetcher:  fetcher,
		Binder:   opts.Binder,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, loader: loader, logger: logger}, nil
}

// Config returns the effective configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Loader returns the wired module loader.
func (a *App) Loader() *modload.Loader { return a.loader }

// Registry returns the loader's module registry.
func (a *App) Registry() *modload.Registry { return a.loader.Registry() }

// Require loads a module and its transitive dependencies.
func (a *App) Require(ctx context.Context, raw, alias string) (*modload.ModuleRecord, error) {
	return a.loader.Require(ctx, raw, alias)
}

// RequireFrom loads a module, resolving relative specifiers against
// the requesting script's directory.
func (a *App) RequireFrom(ctx context.Context, raw, alias string, req modload.RequestContext) (*modload.ModuleRecord, error) {
	return a.loader.RequireFrom(ctx, raw, alias, req)
}

// Resolve maps a specifier to its canonical fetch location without
// loading anything.
func (a *App) Resolve(ctx context.Context, raw string, req modload.RequestContext) (string, error) {
	return a.loader.ResolveLocation(ctx, raw, req)
}

// Graph builds a specifier's dependency graph from declared metadata
// without fetching module bodies.
func (a *App) Graph(ctx context.Context, raw, alias string, req modload.RequestContext) (*modload.DependencyGraph, error) {
	return a.loader.Graph(ctx, raw, alias, req)
}

// Explain maps a require failure to its rendered troubleshooting
// article. It returns the bare error text when no article applies.
func (a *App) Explain(err error) string {
	if err == nil {
		return ""
	}
	if iss := issue.FromError(err); iss != nil {
		if rendered, renderErr := iss.Render("auto"); renderErr == nil {
			return rendered
		}
	}
	return err.Error()
}

// Close persists the resolver location cache when configured to do so.
func (a *App) Close() error {
	if err := a.loader.PersistCache(); err != nil {
		return fmt.Errorf("persisting location cache: %w", err)
	}
	return nil
}

// hostProfile maps the config host mode to a capability profile,
// detecting the host when the mode is auto.
func hostProfile(mode config.HostMode) (hostenv.Profile, error) {
	switch mode {
	case config.HostAuto:
		return hostenv.Detect(), nil
	case config.HostNative:
		return hostenv.ProfileFor(hostenv.KindNative), nil
	case config.HostSandboxed:
		return hostenv.ProfileFor(hostenv.KindSandboxed), nil
	case config.HostControlBus:
		return hostenv.ProfileFor(hostenv.KindControlBus), nil
	default:
		return hostenv.Profile{}, &config.InvalidHostModeError{Value: mode}
	}
}

// newLogger builds the loader logger at the configured level.
func newLogger(level config.LogLevel) *log.Logger {
	parsed, err := log.ParseLevel(level.String())
	if err != nil {
		parsed = log.WarnLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  parsed,
		Prefix: "modload",
	})
}
