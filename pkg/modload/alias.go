// SPDX-License-Identifier: MPL-2.0

package modload

import (
	"fmt"
	"strings"

	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/specifier"
)

// renamedExports is a module's export set after its alias applied.
type renamedExports struct {
	functions   map[string]fetch.Callable
	operations  map[string]fetch.Callable
	handler     fetch.Handler
	handlerName string
}

// applyAlias rewrites a fetched module's exported names per its rename
// clause. Literal prefixes rename every function and operation (the
// unprefixed originals are not kept) and re-register a command handler
// under the verbatim alias. Capture templates rename functions and
// operations only, and are rejected outright on command targets, whose
// single name must be known statically.
func applyAlias(mod *fetch.RawModule, alias specifier.AliasSpec, raw string) (*renamedExports, error) {
	if alias.Kind == specifier.KindCapturePrefix && mod.Kind.IsCommandTarget() {
		return nil, &InvalidAliasError{Raw: raw, Alias: alias}
	}

	rename := func(name string) string {
		switch alias.Kind {
		case specifier.KindLiteralPrefix:
			return alias.Prefix + name
		case specifier.KindCapturePrefix:
			return strings.Replace(alias.Template, specifier.CaptureToken, name, 1)
		default:
			return name
		}
	}

	out := &renamedExports{
		functions:  make(map[string]fetch.Callable, len(mod.Functions)),
		operations: make(map[string]fetch.Callable, len(mod.Operations)),
	}
	for name, fn := range mod.Functions {
		out.functions[rename(name)] = fn
	}
	for name, fn := range mod.Operations {
		out.operations[rename(name)] = fn
	}

	if mod.Handler != nil {
		out.handler = mod.Handler
		switch alias.Kind {
		case specifier.KindLiteralPrefix:
			// A command target renamed with a literal alias takes the
			// alias verbatim, discarding the module's declared name.
			out.handlerName = alias.Verbatim
		default:
			if mod.Name == "" {
				return nil, fmt.Errorf("command target %q declares no name; load it with an alias", raw)
			}
			out.handlerName = mod.Name
		}
	}

	return out, nil
}
