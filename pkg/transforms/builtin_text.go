package transforms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	htmlComment    = regexp.MustCompile(`(?s)<!--.*?-->`)
	htmlInterTag   = regexp.MustCompile(`>\s+<`)
	htmlWhitespace = regexp.MustCompile(`\s{2,}`)
)

// applyHTML exports an HTML fragment as a string
func applyHTML(ctx Context, in Module) (Module, error) {
	markup := string(in.Content)
	if ctx.Options.Bool("minimize", ctx.Env.IsProduction()) {
		markup = htmlComment.ReplaceAllString(markup, "")
		markup = htmlInterTag.ReplaceAllString(markup, "><")
		markup = htmlWhitespace.ReplaceAllString(markup, " ")
		markup = strings.TrimSpace(markup)
	}
	return toScript(in, markup)
}

// applyMarkdown renders Markdown to HTML and exports it as a string
func applyMarkdown(ctx Context, in Module) (Module, error) {
	var opts []goldmark.Option
	if ctx.Options.Bool("unsafe", false) {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	var buf bytes.Buffer
	if err := goldmark.New(opts...).Convert(in.Content, &buf); err != nil {
		return Module{}, fmt.Errorf("render markdown: %w", err)
	}
	return toScript(in, buf.String())
}

// applyJSON accepts JSON with comments and trailing commas and exports the
// parsed value
func applyJSON(ctx Context, in Module) (Module, error) {
	plain := jsonc.ToJSON(in.Content)
	if !json.Valid(plain) {
		return Module{}, fmt.Errorf("invalid JSON in %s", in.Path)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, plain); err != nil {
		return Module{}, fmt.Errorf("compact JSON: %w", err)
	}
	in.Content = []byte("export default " + compact.String() + ";\n")
	in.Kind = KindScript
	in.Ext = "js"
	return in, nil
}
