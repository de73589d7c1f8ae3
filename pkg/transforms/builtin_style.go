package transforms

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	cssClassSelector = regexp.MustCompile(`\.(-?[A-Za-z_][A-Za-z0-9_-]*)`)
	cssScopeUnsafe   = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// applyCSS keeps the module a stylesheet, optionally scoping class names and
// tagging the source
func applyCSS(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "css", KindStyle); err != nil {
		return Module{}, err
	}

	css := string(in.Content)
	if ctx.Options.Bool("modules", false) {
		css = scopeClasses(css, scopePrefix(in.Path))
	}
	if ctx.Options.Bool("source_map", !ctx.Env.IsProduction()) {
		css = strings.TrimRight(css, "\n") + fmt.Sprintf("\n/*# sourceURL=assetpipe:///%s */\n", in.Path)
	}

	in.Content = []byte(css)
	in.Ext = "css"
	return in, nil
}

// scopeClasses prefixes class selectors. Only selector text is touched, so
// declarations such as url(a.png) keep their dots.
func scopeClasses(css, prefix string) string {
	var b strings.Builder
	inBlock := 0
	start := 0
	flush := func(end int, selector bool) {
		seg := css[start:end]
		if selector && !strings.HasPrefix(strings.TrimLeft(seg, "{} \t\r\n"), "@") {
			seg = cssClassSelector.ReplaceAllString(seg, "."+prefix+"_$1")
		}
		b.WriteString(seg)
		start = end
	}

	for i := 0; i < len(css); i++ {
		switch css[i] {
		case '{':
			flush(i, true)
			inBlock++
		case '}':
			flush(i, false)
			if inBlock > 0 {
				inBlock--
			}
		}
	}
	flush(len(css), inBlock == 0)
	return b.String()
}

func scopePrefix(p string) string {
	base := strings.TrimSuffix(path.Base(p), path.Ext(p))
	return cssScopeUnsafe.ReplaceAllString(base, "_")
}

// applyStyle turns a stylesheet into a script that injects it at runtime
func applyStyle(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "style", KindStyle); err != nil {
		return Module{}, err
	}
	encoded, err := json.Marshal(string(in.Content))
	if err != nil {
		return Module{}, err
	}

	script := "(function () {\n" +
		"  var el = document.createElement(\"style\");\n" +
		"  el.setAttribute(\"data-source\", " + mustQuote(in.Path) + ");\n" +
		"  el.textContent = " + string(encoded) + ";\n" +
		"  document.head.appendChild(el);\n" +
		"})();\n"

	in.Content = []byte(script)
	in.Kind = KindScript
	in.Ext = "js"
	return in, nil
}

// applyToString exports a stylesheet's text
func applyToString(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "to-string", KindStyle); err != nil {
		return Module{}, err
	}
	return toScript(in, string(in.Content))
}

func mustQuote(s string) string {
	encoded, _ := json.Marshal(s)
	return string(encoded)
}
