package transforms

import (
	"encoding/json"
	"fmt"
)

// transformFunc adapts a plain function into a Transform
type transformFunc struct {
	name    string
	options []string
	apply   func(ctx Context, in Module) (Module, error)
}

func (t *transformFunc) Name() string      { return t.name }
func (t *transformFunc) Options() []string { return t.options }

func (t *transformFunc) Apply(ctx Context, in Module) (Module, error) {
	return t.apply(ctx, in)
}

// Builtins returns a fresh instance of every built-in transform
func Builtins() []Transform {
	return []Transform{
		&transformFunc{name: "file", options: []string{"name"}, apply: applyFile},
		&transformFunc{name: "url", options: []string{"limit", "name"}, apply: applyURL},
		&transformFunc{name: "inline-svg", options: []string{"remove_comments"}, apply: applyInlineSVG},
		&transformFunc{name: "html", options: []string{"minimize"}, apply: applyHTML},
		&transformFunc{name: "markdown", options: []string{"unsafe"}, apply: applyMarkdown},
		&transformFunc{name: "json", apply: applyJSON},
		&transformFunc{name: "css", options: []string{"source_map", "modules"}, apply: applyCSS},
		&transformFunc{name: "style", apply: applyStyle},
		&transformFunc{name: "to-string", apply: applyToString},
		&transformFunc{name: "script", options: []string{"source_map"}, apply: applyScript},
		&transformFunc{name: "define", options: []string{"keys"}, apply: applyDefine},
		&transformFunc{name: "instrument", apply: applyInstrument},
		&transformFunc{name: "banner", options: []string{"text"}, apply: applyBanner},
	}
}

// exportDefault renders a script module whose default export is value
func exportDefault(value interface{}) ([]byte, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return []byte("export default " + string(encoded) + ";\n"), nil
}

// toScript turns in into a script module exporting value
func toScript(in Module, value interface{}) (Module, error) {
	content, err := exportDefault(value)
	if err != nil {
		return Module{}, err
	}
	in.Content = content
	in.Kind = KindScript
	in.Ext = "js"
	return in, nil
}

func requireKind(in Module, name string, kinds ...Kind) error {
	for _, k := range kinds {
		if in.Kind == k {
			return nil
		}
	}
	return fmt.Errorf("%s expects %v input, got %s", name, kinds, in.Kind)
}
