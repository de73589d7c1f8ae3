package transforms

import (
	"encoding/base64"
	"fmt"
	"mime"

	"github.com/beevik/etree"
)

// DefaultURLLimit is the inlining threshold of the url transform in bytes
const DefaultURLLimit = 10000

// applyFile marks a module as a standalone asset
func applyFile(ctx Context, in Module) (Module, error) {
	in.Kind = KindAsset
	in.NameTemplate = ctx.Options.String("name", in.NameTemplate)
	return in, nil
}

// applyURL inlines small files as data URIs and emits the rest as assets
func applyURL(ctx Context, in Module) (Module, error) {
	limit := ctx.Options.Int("limit", DefaultURLLimit)
	if len(in.Content) > limit {
		ctx.Logger.Debug().Int("bytes", len(in.Content)).Int("limit", limit).Msg("Over inline limit, emitting as file")
		return applyFile(ctx, in)
	}

	mimeType := mime.TypeByExtension("." + in.Ext)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	uri := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(in.Content))
	return toScript(in, uri)
}

// applyInlineSVG parses the SVG and exports its markup as a string
func applyInlineSVG(ctx Context, in Module) (Module, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(in.Content); err != nil {
		return Module{}, fmt.Errorf("parse svg: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return Module{}, fmt.Errorf("svg has no root element")
	}
	if root.Tag != "svg" {
		return Module{}, fmt.Errorf("root element is <%s>, not <svg>", root.Tag)
	}

	if ctx.Options.Bool("remove_comments", true) {
		stripComments(root)
	}

	// Only the root element is kept, which drops the XML declaration and doctype.
	out := etree.NewDocument()
	out.SetRoot(root)
	markup, err := out.WriteToString()
	if err != nil {
		return Module{}, fmt.Errorf("render svg: %w", err)
	}
	return toScript(in, markup)
}

func stripComments(el *etree.Element) {
	children := append([]etree.Token(nil), el.Child...)
	for _, tok := range children {
		switch t := tok.(type) {
		case *etree.Comment:
			el.RemoveChild(t)
		case *etree.Element:
			stripComments(t)
		}
	}
}
