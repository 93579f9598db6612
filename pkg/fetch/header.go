// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HeaderMarker opens the metadata comment at the top of a module
// source file. The full shape is:
//
//	/*! @module
//	{"name": "stats", "version": "1.2.0", "dependencies": ["registry:org.example/core"]}
//	*/
//
// The marker must appear within the first HeaderScanLimit bytes.
const HeaderMarker = "/*! @module"

// HeaderScanLimit bounds how far into a source file the header is
// searched for, so a huge bundle without one is rejected cheaply.
const HeaderScanLimit = 8 * 1024

// headerClose terminates the metadata comment.
const headerClose = "*/"

// ParseHeader extracts declared metadata from module source. A source
// without a header yields zero-value metadata: no name, no
// dependencies, kind library. A present but unparsable header is an
// error — silently ignoring it would load a command target as a
// library.
func ParseHeader(src []byte) (Metadata, error) {
	window := src
	if len(window) > HeaderScanLimit {
		window = window[:HeaderScanLimit]
	}

	start := bytes.Index(window, []byte(HeaderMarker))
	if start < 0 {
		return Metadata{}, nil
	}

	body := src[start+len(HeaderMarker):]
	end := bytes.Index(body, []byte(headerClose))
	if end < 0 {
		return Metadata{}, fmt.Errorf("module metadata header is not terminated")
	}

	var meta Metadata
	if err := json.Unmarshal(bytes.TrimSpace(body[:end]), &meta); err != nil {
		return Metadata{}, fmt.Errorf("parsing module metadata header: %w", err)
	}
	return meta, nil
}
