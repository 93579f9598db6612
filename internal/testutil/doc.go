// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// The helpers cover the two pieces of process-wide state the loader's
// tests touch: environment variables (MustSetenv, MustUnsetenv, and
// SetHomeDir) and the working directory (MustChdir). Each returns a
// cleanup function suitable for t.Cleanup.
package testutil
