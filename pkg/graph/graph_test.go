// Test Type: Unit Test
// Description: Tests for module discovery, reference scanning and resolution

package graph_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/arthur-debert/assetpipe/pkg/entries"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exts = []string{".js", ".ts", ".css"}

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func entrySet(t *testing.T, list ...entries.Entry) entries.EntrySet {
	t.Helper()
	set, err := entries.NewEntrySet(list)
	require.NoError(t, err)
	return set
}

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"src/main.ts": file(`import { render } from './app';
import './styles/theme.css';
import React from 'react';
const lazy = () => import("./lazy");
export { helper } from "./util/index";`),
		"src/app.ts":           file(`const logo = require('./logo.png'); import shared from "./shared";`),
		"src/shared.js":        file(`export default 1;`),
		"src/lazy.js":          file(`import shared from './shared';`),
		"src/util/index.js":    file(`export const helper = 1;`),
		"src/logo.png":         file("png"),
		"src/styles/theme.css": file(`@import "./base.css"; body { background: url(../img/bg.png?v=2); } a { background: url("data:image/png;base64,AA"); }`),
		"src/styles/base.css":  file(`html { font: 12px sans-serif; }`),
		"src/img/bg.png":       file("bg"),
		"src/admin.js":         file(`import shared from './shared'; import 'express';`),
		"src/unreferenced.js":  file(`nothing`),
	}
	set := entrySet(t,
		entries.Entry{Name: "main", Path: "src/main.ts"},
		entries.Entry{Name: "admin", Path: "src/admin"},
	)

	g, err := graph.Discover(context.Background(), fsys, set, graph.Options{Extensions: exts, Externals: []string{"express"}})
	require.NoError(t, err)

	t.Run("reach_is_dependency_first", func(t *testing.T) {
		assert.Equal(t, []string{
			"src/logo.png",
			"src/shared.js",
			"src/app.ts",
			"src/styles/base.css",
			"src/img/bg.png",
			"src/styles/theme.css",
			"src/lazy.js",
			"src/util/index.js",
			"src/main.ts",
		}, g.Reach("main"))
		assert.Equal(t, []string{"src/shared.js", "src/admin.js"}, g.Reach("admin"))
	})

	t.Run("paths_exclude_unreferenced", func(t *testing.T) {
		assert.NotContains(t, g.Paths(), "src/unreferenced.js")
		assert.Len(t, g.Paths(), 10)
	})

	t.Run("refs", func(t *testing.T) {
		main, ok := g.Node("src/main.ts")
		require.True(t, ok)
		require.Len(t, main.Refs, 5)
		assert.Equal(t, "src/app.ts", main.Refs[0].Path)
		assert.True(t, main.Refs[2].External)
		assert.Equal(t, "react", main.Refs[2].Package)
		assert.False(t, main.Refs[2].Declared)

		theme, _ := g.Node("src/styles/theme.css")
		require.Len(t, theme.Refs, 2, "data URIs are skipped")
		assert.Equal(t, graph.RefStyleImport, theme.Refs[0].Kind)
		assert.Equal(t, graph.RefURL, theme.Refs[1].Kind)
		assert.Equal(t, "../img/bg.png?v=2", theme.Refs[1].Spec)
		assert.Equal(t, "src/img/bg.png", theme.Refs[1].Path)
	})

	t.Run("externals", func(t *testing.T) {
		assert.Equal(t, []string{"express", "react"}, g.Externals())
		admin, _ := g.Node("src/admin.js")
		assert.True(t, admin.Refs[1].Declared)
	})
}

func TestDiscover_Aliases(t *testing.T) {
	fsys := fstest.MapFS{
		"src/main.js": file(`import { View } from 'react-native';
import Text from 'react-native/Text';
import { format } from '@app/util';
import theme from 'theme';`),
		"src/app/util.js":    file(`export const format = 1;`),
		"src/theme/index.js": file(`export default {};`),
	}
	opts := graph.Options{
		Extensions: exts,
		Externals:  []string{"react-native-web"},
		Aliases: map[string]string{
			"react-native": "react-native-web",
			"@app":         "./src/app",
			"theme":        "/src/theme",
		},
	}
	g, err := graph.Discover(context.Background(), fsys,
		entrySet(t, entries.Entry{Name: "main", Path: "src/main.js"}), opts)
	require.NoError(t, err)

	main, ok := g.Node("src/main.js")
	require.True(t, ok)
	require.Len(t, main.Refs, 4)

	t.Run("bare_alias_stays_external", func(t *testing.T) {
		assert.True(t, main.Refs[0].External)
		assert.Equal(t, "react-native-web", main.Refs[0].Package)
		assert.True(t, main.Refs[0].Declared)
		assert.Equal(t, "react-native-web", main.Refs[1].Package, "subpaths keep the alias")
		assert.Equal(t, []string{"react-native-web"}, g.Externals())
	})

	t.Run("path_alias_resolves_from_root", func(t *testing.T) {
		assert.False(t, main.Refs[2].External)
		assert.Equal(t, "src/app/util.js", main.Refs[2].Path)
		assert.Equal(t, "@app/util", main.Refs[2].Spec)
		assert.Equal(t, "src/theme/index.js", main.Refs[3].Path)
		assert.Contains(t, g.Paths(), "src/app/util.js")
	})
}

func TestDiscover_Cycles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.js": file(`import './b';`),
		"b.js": file(`import './a';`),
	}
	g, err := graph.Discover(context.Background(), fsys,
		entrySet(t, entries.Entry{Name: "a", Path: "a.js"}), graph.Options{Extensions: exts})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "a.js"}, g.Reach("a"))
}

func TestDiscover_Errors(t *testing.T) {
	t.Run("missing_entry", func(t *testing.T) {
		_, err := graph.Discover(context.Background(), fstest.MapFS{},
			entrySet(t, entries.Entry{Name: "main", Path: "src/main.js"}), graph.Options{Extensions: exts})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrEntryMissing))
	})

	t.Run("missing_module", func(t *testing.T) {
		fsys := fstest.MapFS{"src/main.js": file(`import x from './nope';`)}
		_, err := graph.Discover(context.Background(), fsys,
			entrySet(t, entries.Entry{Name: "main", Path: "src/main.js"}), graph.Options{Extensions: exts})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrModuleNotFound))
		assert.Equal(t, "src/main.js", errors.GetErrorDetails(err)["from"])
	})

	t.Run("escaping_root", func(t *testing.T) {
		fsys := fstest.MapFS{"main.js": file(`import x from '../outside.js';`)}
		_, err := graph.Discover(context.Background(), fsys,
			entrySet(t, entries.Entry{Name: "main", Path: "main.js"}), graph.Options{Extensions: exts})
		assert.True(t, errors.IsErrorCode(err, errors.ErrModuleNotFound))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fsys := fstest.MapFS{"main.js": file(``)}
		_, err := graph.Discover(ctx, fsys,
			entrySet(t, entries.Entry{Name: "main", Path: "main.js"}), graph.Options{Extensions: exts})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
