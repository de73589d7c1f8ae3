// Test Type: Unit Test
// Description: Tests for the built-in transforms

package transforms_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, env buildenv.Context, ref transforms.Ref, path, content string) transforms.Module {
	t.Helper()
	runner := transforms.NewRunner(transforms.DefaultRegistry(), env)
	out, err := runner.Run([]transforms.Ref{ref}, transforms.NewModule(path, []byte(content)))
	require.NoError(t, err)
	return out
}

func TestFile(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)
	out := run(t, env, transforms.Ref{Name: "file", Options: transforms.Options{"name": "fonts/[name].[hash].[ext]"}},
		"src/fonts/a.woff2", "binary")

	assert.Equal(t, transforms.KindAsset, out.Kind)
	assert.Equal(t, "woff2", out.Ext)
	assert.Equal(t, "fonts/[name].[hash].[ext]", out.NameTemplate)
	assert.Equal(t, "binary", string(out.Content))
}

func TestURL(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)

	t.Run("inlines_under_limit", func(t *testing.T) {
		out := run(t, env, transforms.Ref{Name: "url", Options: transforms.Options{"limit": 100}},
			"src/dot.png", "abc")
		assert.Equal(t, transforms.KindScript, out.Kind)
		assert.Equal(t, "export default \"data:image/png;base64,YWJj\";\n", string(out.Content))
	})

	t.Run("emits_file_over_limit", func(t *testing.T) {
		out := run(t, env, transforms.Ref{Name: "url", Options: transforms.Options{"limit": 2}},
			"src/dot.png", "abc")
		assert.Equal(t, transforms.KindAsset, out.Kind)
		assert.Equal(t, "abc", string(out.Content))
	})
}

func TestInlineSVG(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)
	src := `<?xml version="1.0"?>
<!DOCTYPE svg>
<svg xmlns="http://www.w3.org/2000/svg"><!-- logo --><path d="M0 0"/></svg>`

	out := run(t, env, transforms.Ref{Name: "inline-svg"}, "src/assets/inline/logo.svg", src)
	assert.Equal(t, transforms.KindScript, out.Kind)
	body := string(out.Content)
	assert.True(t, strings.HasPrefix(body, "export default \"\\u003csvg"), body)
	assert.NotContains(t, body, "logo --")
	assert.NotContains(t, body, "DOCTYPE")
	assert.NotContains(t, body, "?xml")

	kept := run(t, env, transforms.Ref{Name: "inline-svg", Options: transforms.Options{"remove_comments": false}},
		"src/assets/inline/logo.svg", src)
	assert.Contains(t, string(kept.Content), "logo --")

	runner := transforms.NewRunner(transforms.DefaultRegistry(), env)
	_, err := runner.Run([]transforms.Ref{{Name: "inline-svg"}},
		transforms.NewModule("src/a.svg", []byte("<html></html>")))
	assert.Error(t, err)
}

func TestHTML(t *testing.T) {
	src := "<div>\n  <!-- note -->\n  <p>Hi</p>\n</div>\n"

	prod := run(t, testEnv(t, buildenv.ModeProduction, nil), transforms.Ref{Name: "html"}, "src/a.html", src)
	assert.Equal(t, "export default \"\\u003cdiv\\u003e\\u003cp\\u003eHi\\u003c/p\\u003e\\u003c/div\\u003e\";\n",
		string(prod.Content))

	dev := run(t, testEnv(t, buildenv.ModeDevelopment, nil), transforms.Ref{Name: "html"}, "src/a.html", src)
	assert.Contains(t, string(dev.Content), "note")
}

func TestMarkdown(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)
	out := run(t, env, transforms.Ref{Name: "markdown"}, "docs/intro.md", "# Title\n\n<b>raw</b>\n")
	body := string(out.Content)
	assert.Contains(t, body, "\\u003ch1\\u003eTitle")
	assert.NotContains(t, body, "\\u003cb\\u003eraw")

	unsafe := run(t, env, transforms.Ref{Name: "markdown", Options: transforms.Options{"unsafe": true}},
		"docs/intro.md", "# Title\n\n<b>raw</b>\n")
	assert.Contains(t, string(unsafe.Content), "\\u003cb\\u003eraw")
}

func TestJSON(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)
	out := run(t, env, transforms.Ref{Name: "json"}, "src/data.json", "{\n  // comment\n  \"a\": [1, 2,],\n}\n")
	assert.Equal(t, "export default {\"a\":[1,2]};\n", string(out.Content))
	assert.Equal(t, "js", out.Ext)

	runner := transforms.NewRunner(transforms.DefaultRegistry(), env)
	_, err := runner.Run([]transforms.Ref{{Name: "json"}}, transforms.NewModule("src/bad.json", []byte("{a:")))
	assert.Error(t, err)
}

func TestCSS(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)

	t.Run("modules_scope_selectors_only", func(t *testing.T) {
		src := ".btn, .btn-primary:hover { background: url(img/a.png); margin: 0.5em; }\n@media (min-width: 1.5em) { .btn { x: 1; } }"
		out := run(t, env, transforms.Ref{Name: "css", Options: transforms.Options{"modules": true}}, "src/button.css", src)
		css := string(out.Content)
		assert.Contains(t, css, ".button_btn, .button_btn-primary:hover")
		assert.Contains(t, css, "url(img/a.png)")
		assert.Contains(t, css, "0.5em")
		assert.Contains(t, css, "{ .button_btn { x: 1; } }")
		assert.Equal(t, transforms.KindStyle, out.Kind)
	})

	t.Run("source_map_in_development", func(t *testing.T) {
		dev := testEnv(t, buildenv.ModeDevelopment, nil)
		out := run(t, dev, transforms.Ref{Name: "css"}, "src/a.css", "a{}")
		assert.Contains(t, string(out.Content), "sourceURL=assetpipe:///src/a.css")
	})
}

func TestToString(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, nil)
	out := run(t, env, transforms.Ref{Name: "to-string"}, "src/a.css", "a{}")
	assert.Equal(t, "export default \"a{}\";\n", string(out.Content))
	assert.Equal(t, transforms.KindScript, out.Kind)
}

func TestDefine(t *testing.T) {
	env := testEnv(t, buildenv.ModeProduction, map[string]string{"API": "a", "API_HOST": "h"})

	src := "if (process.env.NODE_ENV === 'production') { f(process.env.API_HOST, process.env.API, process.env.OTHER); }"
	out := run(t, env, transforms.Ref{Name: "define"}, "src/a.js", src)
	assert.Equal(t, "if (\"production\" === 'production') { f(\"h\", \"a\", process.env.OTHER); }", string(out.Content))

	limited := run(t, env, transforms.Ref{Name: "define", Options: transforms.Options{"keys": []interface{}{"API"}}},
		"src/a.js", src)
	assert.Contains(t, string(limited.Content), "process.env.NODE_ENV")
	assert.Contains(t, string(limited.Content), "process.env.API_HOST")
}

func TestInstrumentAndBanner(t *testing.T) {
	env := testEnv(t, buildenv.ModeTest, nil)

	out := run(t, env, transforms.Ref{Name: "instrument"}, "src/a.js", "f();")
	assert.Contains(t, string(out.Content), "__coverage__[\"src/a.js\"]")
	assert.True(t, strings.HasSuffix(string(out.Content), "f();"))

	banner := run(t, env, transforms.Ref{Name: "banner", Options: transforms.Options{"text": "(c) acme"}}, "src/a.js", "f();")
	assert.Equal(t, "/*! (c) acme */\nf();", string(banner.Content))

	asset := run(t, env, transforms.Ref{Name: "banner", Options: transforms.Options{"text": "x"}}, "src/a.png", "png")
	assert.Equal(t, "png", string(asset.Content))
}

func TestScript(t *testing.T) {
	out := run(t, testEnv(t, buildenv.ModeProduction, nil), transforms.Ref{Name: "script"}, "src/a.ts", "f();\n")
	assert.Equal(t, "f();\n", string(out.Content))
	assert.Equal(t, "js", out.Ext)

	dev := run(t, testEnv(t, buildenv.ModeDevelopment, nil), transforms.Ref{Name: "script"}, "src/a.ts", "f();\n")
	assert.Equal(t, "f();\n//# sourceURL=assetpipe:///src/a.ts\n", string(dev.Content))
}
