package transforms

import (
	"fmt"
	"regexp"
	"strings"
)

var envReference = regexp.MustCompile(`process\.env\.[A-Za-z_$][A-Za-z0-9_$]*`)

// applyScript stands in for a compiler pass. Content passes through; the
// module is tagged with its source when source maps are on.
func applyScript(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "script", KindScript); err != nil {
		return Module{}, err
	}
	if ctx.Options.Bool("source_map", !ctx.Env.IsProduction()) {
		src := strings.TrimRight(string(in.Content), "\n")
		in.Content = []byte(src + fmt.Sprintf("\n//# sourceURL=assetpipe:///%s\n", in.Path))
	}
	in.Ext = "js"
	return in, nil
}

// defineValues returns the substitutions for process.env references
func defineValues(ctx Context) map[string]string {
	values := map[string]string{"NODE_ENV": string(ctx.Env.Mode())}
	for k, v := range ctx.Env.Flags() {
		values[k] = v
	}

	keys := ctx.Options.Strings("keys")
	if len(keys) == 0 {
		return values
	}
	selected := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			selected[k] = v
		}
	}
	return selected
}

// applyDefine replaces process.env.KEY references with string literals.
// Keys without a value are left alone.
func applyDefine(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "define", KindScript); err != nil {
		return Module{}, err
	}

	values := defineValues(ctx)
	src := envReference.ReplaceAllStringFunc(string(in.Content), func(ref string) string {
		if v, ok := values[strings.TrimPrefix(ref, "process.env.")]; ok {
			return mustQuote(v)
		}
		return ref
	})
	in.Content = []byte(src)
	return in, nil
}

// applyInstrument prepends a per-file execution counter
func applyInstrument(ctx Context, in Module) (Module, error) {
	if err := requireKind(in, "instrument", KindScript); err != nil {
		return Module{}, err
	}
	key := mustQuote(in.Path)
	header := "var __coverage__ = (typeof globalThis !== \"undefined\" ? globalThis : this).__coverage__ = " +
		"(typeof globalThis !== \"undefined\" ? globalThis : this).__coverage__ || {};\n" +
		"__coverage__[" + key + "] = (__coverage__[" + key + "] || 0) + 1;\n"
	in.Content = append([]byte(header), in.Content...)
	return in, nil
}

// applyBanner prepends a comment to scripts and stylesheets
func applyBanner(ctx Context, in Module) (Module, error) {
	text := ctx.Options.String("text", "")
	if text == "" || in.Kind == KindAsset {
		return in, nil
	}
	text = strings.ReplaceAll(text, "*/", "* /")
	in.Content = append([]byte("/*! "+text+" */\n"), in.Content...)
	return in, nil
}
