// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/hostenv"
	"github.com/oriolang/modload/pkg/policy"
	"github.com/oriolang/modload/pkg/specifier"
)

// DefaultRegistryBaseURL is the package index used by the registry
// strategy until the embedder overrides it.
const DefaultRegistryBaseURL = "https://registry.oriolang.dev/modules"

// DefaultRegistryIndexFile is the artifact fetched from a registry
// package directory.
const DefaultRegistryIndexFile = "index.js"

// defaultProjectMarkers identify a project root for the root strategy.
var defaultProjectMarkers = []string{".git", "package.json", "oriomod.json"}

type (
	// RequestContext says where a require call came from. Relative and
	// absolute specifiers resolve against the requesting script's
	// directory, not the process working directory.
	RequestContext struct {
		// Dir is the requesting script's directory: a filesystem path,
		// or an http(s) URL ending at the script's parent for modules
		// that were themselves fetched remotely. Empty means the
		// process working directory.
		Dir string
	}

	// Resolver maps parsed specifiers to canonical fetch locations,
	// applying host legality, security policy, and the candidate
	// preference order.
	Resolver struct {
		profile hostenv.Profile
		policy  *policy.Policy
		prober  fetch.Fetcher
		logger  *log.Logger

		markers []string
		cache   *locationCache

		mu            sync.RWMutex
		registryBase  string
		registryIndex string
	}

	// ResolverOptions configures a Resolver. Zero values fall back to
	// package defaults.
	ResolverOptions struct {
		Profile           hostenv.Profile
		Policy            *policy.Policy
		Prober            fetch.Fetcher
		Logger            *log.Logger
		RegistryBaseURL   string
		RegistryIndexFile string
		ProjectMarkers    []string
		CacheSize         int
		CachePersistPath  string
	}
)

// NewResolver creates a resolver. The prober is required; it is how
// candidate fetchability is checked during preference fallback.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	if opts.Prober == nil {
		return nil, fmt.Errorf("resolver requires a prober")
	}

	base := opts.RegistryBaseURL
	if base == "" {
		base = DefaultRegistryBaseURL
	}
	index := opts.RegistryIndexFile
	if index == "" {
		index = DefaultRegistryIndexFile
	}
	markers := opts.ProjectMarkers
	if len(markers) == 0 {
		markers = defaultProjectMarkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}

	cache, err := newLocationCache(opts.CacheSize, opts.CachePersistPath)
	if err != nil {
		return nil, fmt.Errorf("creating resolver cache: %w", err)
	}

	return &Resolver{
		profile:       opts.Profile,
		policy:        opts.Policy,
		prober:        opts.Prober,
		logger:        logger,
		markers:       markers,
		cache:         cache,
		registryBase:  strings.TrimSuffix(base, "/"),
		registryIndex: index,
	}, nil
}

// SetRegistryBaseURL changes the package index used by the registry
// strategy for all subsequent resolutions. Cached locations are purged
// so registry specifiers re-resolve against the new base.
func (r *Resolver) SetRegistryBaseURL(base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registryBase = strings.TrimSuffix(base, "/")
	r.cache.purge()
}

// RegistryBaseURL returns the current package index base.
func (r *Resolver) RegistryBaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registryBase
}

// Resolve maps a specifier to the first fetchable canonical location,
// trying candidates left to right. A single-candidate specifier
// surfaces its typed failure directly; a multi-candidate specifier
// that exhausts every candidate fails with NotFoundError aggregating
// the per-candidate errors.
func (r *Resolver) Resolve(ctx context.Context, spec specifier.ModuleSpecifier, req RequestContext) (string, error) {
	var attempts []Attempt

	for _, cand := range spec.Candidates {
		loc, err := r.resolveCandidate(ctx, cand, req)
		if err != nil {
			if len(spec.Candidates) == 1 {
				return "", err
			}
			r.logger.Debug("candidate failed, trying next",
				"candidate", cand.Raw, "err", err)
			attempts = append(attempts, Attempt{Candidate: cand.Raw, Err: err})
			continue
		}
		r.logger.Debug("specifier resolved",
			"specifier", spec.Raw, "candidate", cand.Raw, "location", loc)
		return loc, nil
	}

	return "", &NotFoundError{Raw: spec.Raw, Attempts: attempts}
}

func (r *Resolver) resolveCandidate(ctx context.Context, cand specifier.Candidate, req RequestContext) (string, error) {
	if !r.profile.Allows(cand.Strategy) {
		return "", &StrategyNotSupportedError{
			Raw:      cand.Raw,
			Strategy: cand.Strategy,
			Host:     r.profile.Kind,
		}
	}

	if dec, pattern := r.policy.Explain(cand.Raw); dec == policy.Deny {
		return "", &PermissionDeniedError{Raw: cand.Raw, Pattern: pattern}
	}

	// Sandboxed hosts grant URL loads only to explicitly whitelisted
	// specifiers.
	if cand.Strategy == specifier.StrategyURL &&
		r.profile.Kind == hostenv.KindSandboxed &&
		!r.policy.MatchedAllow(cand.Raw) {
		return "", &PermissionDeniedError{Raw: cand.Raw}
	}

	// The separator cannot appear in a specifier and keeps the key
	// representable in the persisted TOML.
	cacheKey := cand.Raw + " | " + req.Dir
	if loc, ok := r.cache.get(cacheKey); ok {
		return loc, nil
	}

	loc, err := r.locate(cand, req)
	if err != nil {
		return "", err
	}

	if err := r.prober.Probe(ctx, loc); err != nil {
		return "", err
	}

	r.cache.put(cacheKey, loc)
	return loc, nil
}

// locate maps a legal, policy-approved candidate to its concrete
// location. No I/O beyond filesystem walks for root/npm discovery.
func (r *Resolver) locate(cand specifier.Candidate, req RequestContext) (string, error) {
	switch cand.Strategy {
	case specifier.StrategyCwd:
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, cand.Path), nil

	case specifier.StrategyRoot:
		root, err := r.findProjectRoot(baseDir(req))
		if err != nil {
			return "", err
		}
		return filepath.Join(root, cand.Path), nil

	case specifier.StrategyRegistry:
		r.mu.RLock()
		base, index := r.registryBase, r.registryIndex
		r.mu.RUnlock()
		return base + "/" + cand.Path + "/" + index, nil

	case specifier.StrategyNPM:
		return r.locateNodePackage(cand.Path, baseDir(req))

	case specifier.StrategyGitHub:
		return locateGitHub(cand.Path)

	case specifier.StrategyRelative:
		return resolveAgainst(req, cand.Path)

	case specifier.StrategyAbsolute:
		return filepath.Clean(cand.Path), nil

	case specifier.StrategyURL:
		return cand.Path, nil

	default:
		return "", fmt.Errorf("unknown strategy %q", cand.Strategy)
	}
}

// baseDir returns the requesting directory, defaulting to the process
// working directory.
func baseDir(req RequestContext) string {
	if req.Dir != "" {
		return req.Dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// resolveAgainst joins a relative path onto the requesting directory,
// which may itself be a URL when the requesting module was fetched
// remotely.
func resolveAgainst(req RequestContext, rel string) (string, error) {
	dir := baseDir(req)
	if strings.HasPrefix(dir, "http://") || strings.HasPrefix(dir, "https://") {
		base, err := url.Parse(strings.TrimSuffix(dir, "/") + "/")
		if err != nil {
			return "", fmt.Errorf("requesting URL %q is invalid: %w", dir, err)
		}
		ref, err := url.Parse(rel)
		if err != nil {
			return "", fmt.Errorf("relative specifier %q is invalid: %w", rel, err)
		}
		return base.ResolveReference(ref).String(), nil
	}
	return filepath.Clean(filepath.Join(dir, rel)), nil
}

// findProjectRoot walks up from dir until a directory contains one of
// the recognized project markers.
func (r *Resolver) findProjectRoot(dir string) (string, error) {
	for {
		for _, marker := range r.markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no project root above %s (looked for %s)",
				dir, strings.Join(r.markers, ", "))
		}
		dir = parent
	}
}

// locateNodePackage finds pkg under the nearest node_modules directory,
// honoring the package.json main field.
func (r *Resolver) locateNodePackage(pkg, dir string) (string, error) {
	for {
		pkgDir := filepath.Join(dir, "node_modules", pkg)
		if info, err := os.Stat(pkgDir); err == nil && info.IsDir() {
			return nodePackageEntry(pkgDir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: package %q not found in any node_modules above %s",
				fetch.ErrNotFound, pkg, dir)
		}
		dir = parent
	}
}

func nodePackageEntry(pkgDir string) (string, error) {
	manifest := filepath.Join(pkgDir, "package.json")
	data, err := os.ReadFile(manifest)
	if err != nil {
		return filepath.Join(pkgDir, "index.js"), nil
	}
	var pj struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pj); err != nil || pj.Main == "" {
		return filepath.Join(pkgDir, "index.js"), nil
	}
	return filepath.Join(pkgDir, pj.Main), nil
}

// locateGitHub maps "github.com/owner/repo[@ref][/sub/path]" to a
// fetchable URL. With a subpath the file comes from raw content at the
// given ref (HEAD when unversioned); without one, from the repo's
// release artifact named after the repo, using the latest release when
// no ref is given.
func locateGitHub(spec string) (string, error) {
	parts := strings.Split(spec, "/")
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("github specifier %q needs at least owner/repo", spec)
	}

	owner := parts[1]
	repo := parts[2]
	ref := ""
	if at := strings.Index(repo, "@"); at >= 0 {
		repo, ref = repo[:at], repo[at+1:]
	}
	sub := path.Join(parts[3:]...)

	switch {
	case sub != "" && ref != "":
		return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", owner, repo, ref, sub), nil
	case sub != "":
		return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/HEAD/%s", owner, repo, sub), nil
	case ref != "":
		return fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s.js", owner, repo, ref, repo), nil
	default:
		return fmt.Sprintf("https://github.com/%s/%s/releases/latest/download/%s.js", owner, repo, repo), nil
	}
}

// defaultLogger is used when the embedder does not supply one.
func defaultLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.WarnLevel,
		Prefix: "modload",
	})
}
