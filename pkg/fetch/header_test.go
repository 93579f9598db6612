// SPDX-License-Identifier: MPL-2.0

package fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	t.Run("full header", func(t *testing.T) {
		t.Parallel()
		src := []byte(`/*! @module
{"name": "stats", "version": "1.2.0", "dependencies": ["registry:org.example/core"], "kind": "library"}
*/
say "hello"
`)
		meta, err := ParseHeader(src)
		require.NoError(t, err)
		assert.Equal(t, "stats", meta.Name)
		assert.Equal(t, "1.2.0", meta.Version)
		assert.Equal(t, []string{"registry:org.example/core"}, meta.Dependencies)
		assert.Equal(t, KindLibrary, meta.Kind)
	})

	t.Run("command target kind", func(t *testing.T) {
		t.Parallel()
		src := []byte(`/*! @module {"name": "sqlbridge", "kind": "command-target"} */`)
		meta, err := ParseHeader(src)
		require.NoError(t, err)
		assert.Equal(t, KindCommandTarget, meta.Kind)
		assert.True(t, meta.Kind.IsCommandTarget())
	})

	t.Run("missing header yields zero metadata", func(t *testing.T) {
		t.Parallel()
		meta, err := ParseHeader([]byte(`say "no header here"`))
		require.NoError(t, err)
		assert.Empty(t, meta.Name)
		assert.Empty(t, meta.Dependencies)
		assert.Equal(t, KindLibrary, meta.Kind)
	})

	t.Run("unterminated header fails", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHeader([]byte(`/*! @module {"name": "x"}`))
		require.Error(t, err)
	})

	t.Run("invalid JSON fails", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHeader([]byte(`/*! @module {name: x} */`))
		require.Error(t, err)
	})

	t.Run("unknown kind fails", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHeader([]byte(`/*! @module {"kind": "plugin"} */`))
		require.Error(t, err)
	})

	t.Run("header beyond scan limit is ignored", func(t *testing.T) {
		t.Parallel()
		src := strings.Repeat("/* padding */\n", HeaderScanLimit/14+1) +
			`/*! @module {"name": "late"} */`
		meta, err := ParseHeader([]byte(src))
		require.NoError(t, err)
		assert.Empty(t, meta.Name)
	})
}

func TestRawModule_Validate(t *testing.T) {
	t.Parallel()

	t.Run("command target without handler", func(t *testing.T) {
		t.Parallel()
		mod := &RawModule{Metadata: Metadata{Name: "x", Kind: KindCommandTarget}}
		require.Error(t, mod.Validate())
	})

	t.Run("library with handler", func(t *testing.T) {
		t.Parallel()
		mod := &RawModule{
			Metadata: Metadata{Name: "x", Kind: KindLibrary},
			Handler:  func(context.Context, string) (any, error) { return nil, nil },
		}
		require.Error(t, mod.Validate())
	})

	t.Run("combined with both", func(t *testing.T) {
		t.Parallel()
		mod := &RawModule{
			Metadata: Metadata{Name: "x", Kind: KindCombined},
			Functions: map[string]Callable{
				"PING": func(context.Context, ...any) (any, error) { return "pong", nil },
			},
			Handler: func(context.Context, string) (any, error) { return nil, nil },
		}
		require.NoError(t, mod.Validate())
	})
}
