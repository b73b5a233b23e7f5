package diagfmt

import (
	"encoding/json"
	"io"
	"path"

	"provel/internal/diag"
	"provel/internal/source"
)

type jsonPos struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type jsonNote struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
}

type jsonDiag struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	File     string     `json:"file,omitempty"`
	Start    *jsonPos   `json:"start,omitempty"`
	End      *jsonPos   `json:"end,omitempty"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON renders the bag as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	out := make([]jsonDiag, 0, bag.Len())
	for _, d := range bag.Items() {
		jd := jsonDiag{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  d.Message,
		}
		if fs != nil && int(d.Primary.File) < fs.Len() {
			jd.File = formatPath(fs.Get(d.Primary.File).Path, opts.PathMode)
			if opts.IncludePositions {
				start, end := fs.Resolve(d.Primary)
				jd.Start = &jsonPos{Line: start.Line, Col: start.Col}
				jd.End = &jsonPos{Line: end.Line, Col: end.Col}
			}
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				note := jsonNote{Message: n.Msg}
				if fs != nil && int(n.Span.File) < fs.Len() {
					note.File = formatPath(fs.Get(n.Span.File).Path, opts.PathMode)
				}
				jd.Notes = append(jd.Notes, note)
			}
		}
		out = append(out, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatPath(p string, mode PathMode) string {
	if mode == PathModeBasename {
		return path.Base(p)
	}
	return p
}
