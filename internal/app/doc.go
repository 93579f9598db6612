// SPDX-License-Identifier: MPL-2.0

// Package app is the composition root for embedders: it loads
// configuration, detects the host profile, compiles the security
// policy, and assembles the transports, resolver, and loader into a
// single App the script runtime calls Require on.
package app
