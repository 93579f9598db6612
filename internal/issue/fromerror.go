// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"

	"github.com/oriolang/modload/pkg/fetch"
	"github.com/oriolang/modload/pkg/modload"
	"github.com/oriolang/modload/pkg/specifier"
)

// FromError maps a module-loading failure to its catalog entry, so host
// frontends can render remediation guidance next to the raw error.
// Returns nil for errors with no dedicated issue.
func FromError(err error) *Issue {
	if err == nil {
		return nil
	}

	var (
		malformed    *specifier.MalformedSpecifierError
		notSupported *modload.StrategyNotSupportedError
		denied       *modload.PermissionDeniedError
		notFound     *modload.NotFoundError
		cycle        *modload.CycleError
		invalidAlias *modload.InvalidAliasError
		loadFailure  *modload.LoadFailureError
	)

	switch {
	case errors.As(err, &malformed):
		return Get(MalformedSpecifierId)
	case errors.As(err, &notSupported):
		return Get(StrategyNotSupportedId)
	case errors.As(err, &denied):
		return Get(PermissionDeniedId)
	case errors.As(err, &cycle):
		return Get(DependencyCycleId)
	case errors.As(err, &invalidAlias):
		return Get(InvalidAliasId)
	case errors.As(err, &notFound):
		return Get(ModuleNotFoundId)
	case errors.As(err, &loadFailure):
		return Get(FetchFailedId)
	case errors.Is(err, fetch.ErrNotFound):
		return Get(ModuleNotFoundId)
	default:
		return nil
	}
}
