// Package ui renders command results as styled terminal output, plain text
// or JSON.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/core"
	"github.com/arthur-debert/assetpipe/pkg/emitter"
	"github.com/arthur-debert/assetpipe/pkg/entries"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/internal/hashutil"
	"github.com/arthur-debert/assetpipe/pkg/rules"
	"github.com/arthur-debert/assetpipe/pkg/style"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/pterm/pterm"
)

// Renderer writes command results in one format
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer. FormatAuto is resolved against w when it
// is a file and falls back to text otherwise.
func NewRenderer(format Format, w io.Writer) (*Renderer, error) {
	switch format {
	case FormatAuto:
		if f, ok := w.(*os.File); ok {
			return NewRenderer(DetectFormat(f), w)
		}
		return NewRenderer(FormatText, w)
	case FormatTerminal, FormatText, FormatJSON:
		return &Renderer{w: w, format: format}, nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}

// Format returns the resolved format
func (r *Renderer) Format() Format { return r.format }

func (r *Renderer) styled(s string, st interface{ Render(...string) string }) string {
	if r.format != FormatTerminal {
		return s
	}
	return st.Render(s)
}

func (r *Renderer) json(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table renders rows with a header. Terminal output uses pterm's table;
// text output is space aligned.
func (r *Renderer) table(header []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	data := append([][]string{header}, rows...)
	if r.format == FormatTerminal {
		out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.w, out)
		return err
	}

	widths := make([]int, len(header))
	for _, row := range data {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	for _, row := range data {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
		}
		if _, err := fmt.Fprintln(r.w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

// Message renders a line of text
func (r *Renderer) Message(msg string) error {
	if r.format == FormatJSON {
		return r.json(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

// Error renders a failed command, with its code and details when coded
func (r *Renderer) Error(err error) error {
	code := errors.GetErrorCode(err)
	details := errors.GetErrorDetails(err)
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{
			"error":   err.Error(),
			"code":    code,
			"details": details,
		})
	}

	if _, werr := fmt.Fprintf(r.w, "%s %s\n", r.styled("✗", style.ErrorStyle), err.Error()); werr != nil {
		return werr
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line := fmt.Sprintf("%s: %v", k, details[k])
		if _, werr := fmt.Fprintln(r.w, "  "+r.styled(line, style.MutedStyle)); werr != nil {
			return werr
		}
	}
	return nil
}

// buildSummary is the JSON shape of a build
type buildSummary struct {
	Target    string              `json:"target"`
	Mode      string              `json:"mode"`
	Output    string              `json:"output"`
	DryRun    bool                `json:"dryRun"`
	Hash      string              `json:"hash"`
	Chunks    []emitter.Chunk     `json:"chunks"`
	Artifacts []emitter.Artifact  `json:"artifacts"`
	Files     map[string]string   `json:"files"`
	ByChunk   map[string][]string `json:"assetsByChunkName"`
}

// Build renders the outcome of one target's build
func (r *Renderer) Build(res *core.BuildResult) error {
	env := res.Plan.Env
	if r.format == FormatJSON {
		return r.json(buildSummary{
			Target:    string(env.Target()),
			Mode:      string(env.Mode()),
			Output:    res.OutputDir,
			DryRun:    res.DryRun,
			Hash:      res.Manifest.Hash,
			Chunks:    res.Emission.Chunks,
			Artifacts: res.Emission.Artifacts,
			Files:     res.Manifest.Files,
			ByChunk:   res.Manifest.AssetsByChunkName,
		})
	}

	title := fmt.Sprintf("%s build (%s) → %s", env.Target(), env.Mode(), res.OutputDir)
	if res.DryRun {
		title += " [dry run]"
	}
	if _, err := fmt.Fprintf(r.w, "%s %s\n", r.styled("✓", style.SuccessStyle), r.styled(title, style.TitleStyle)); err != nil {
		return err
	}

	rows := make([][]string, 0, len(res.Emission.Artifacts))
	for _, a := range res.Emission.Artifacts {
		rows = append(rows, []string{
			r.styled(string(a.Kind), style.KindStyle(string(a.Kind))),
			a.LogicalName,
			r.styled(a.OutputPath, style.PathStyle),
			FormatBytes(a.SizeBytes),
		})
	}
	if err := r.table([]string{"KIND", "NAME", "OUTPUT", "SIZE"}, rows); err != nil {
		return err
	}

	for _, c := range res.Emission.Chunks {
		line := fmt.Sprintf("chunk %s: %d modules", c.Name, len(c.Modules))
		if _, err := fmt.Fprintln(r.w, r.styled(line, style.MutedStyle)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.w, "hash %s\n", r.styled(hashutil.Short(res.Manifest.Hash, 16), style.HashStyle))
	return err
}

// Explanation is the rule resolution of one path
type Explanation struct {
	Path       string
	Resolution rules.Resolution
	Err        error
}

// Explain renders which rules apply to each path and the resulting chain
func (r *Renderer) Explain(items []Explanation) error {
	if r.format == FormatJSON {
		type jsonItem struct {
			Path  string   `json:"path"`
			Rules []string `json:"rules,omitempty"`
			Chain []string `json:"chain,omitempty"`
			Error string   `json:"error,omitempty"`
		}
		out := make([]jsonItem, 0, len(items))
		for _, it := range items {
			ji := jsonItem{Path: it.Path, Rules: it.Resolution.Rules, Chain: chainStrings(it.Resolution.Chain)}
			if it.Err != nil {
				ji.Error = it.Err.Error()
			}
			out = append(out, ji)
		}
		return r.json(out)
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		if it.Err != nil {
			rows = append(rows, []string{it.Path, r.styled("unmatched", style.ErrorStyle), ""})
			continue
		}
		rows = append(rows, []string{
			it.Path,
			strings.Join(it.Resolution.Rules, ", "),
			strings.Join(chainStrings(it.Resolution.Chain), " → "),
		})
	}
	return r.table([]string{"PATH", "RULES", "CHAIN"}, rows)
}

func chainStrings(chain []transforms.Ref) []string {
	out := make([]string, 0, len(chain))
	for _, ref := range chain {
		out = append(out, ref.String())
	}
	return out
}

// Entries renders the resolved entry points of a target
func (r *Renderer) Entries(target string, set entries.EntrySet) error {
	all := set.All()
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{"target": target, "entries": all})
	}
	if _, err := fmt.Fprintln(r.w, r.styled(target, style.TitleStyle)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(all))
	for _, e := range all {
		rows = append(rows, []string{e.Name, r.styled(e.Path, style.PathStyle), r.styled(e.Reason, style.MutedStyle)})
	}
	return r.table([]string{"ENTRY", "PATH", "SELECTED BY"}, rows)
}

// Resolved renders the manifest lookup of logical names
func (r *Renderer) Resolved(found map[string]string, missing []string) error {
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{"resolved": found, "missing": missing})
	}
	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(r.w, "%s\t%s\n", name, found[name]); err != nil {
			return err
		}
	}
	for _, name := range missing {
		if _, err := fmt.Fprintf(r.w, "%s %s not in manifest\n", r.styled("!", style.WarningStyle), name); err != nil {
			return err
		}
	}
	return nil
}

// FormatBytes renders a size with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
