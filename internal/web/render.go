package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	errs "alias-heaven-calculator/pkg/errors"
)

var funcMap = template.FuncMap{
	// deref prints an optional threshold or a dash when there is none
	"deref": func(v *int64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *v)
	},
	"signed": func(v int64) string {
		if v > 0 {
			return fmt.Sprintf("+%d", v)
		}
		return fmt.Sprintf("%d", v)
	},
	"checked": func(b bool) template.HTMLAttr {
		if b {
			return "checked"
		}
		return ""
	},
}

// Templates holds the parsed page templates.
type Templates struct {
	t *template.Template
}

// LoadTemplates parses every *.tmpl file at the root of fsys.
func LoadTemplates(fsys fs.FS) (*Templates, error) {
	t, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.tmpl")
	if err != nil {
		return nil, errs.NewBiz("web.LoadTemplates", "failed to parse templates", err)
	}
	for _, name := range []string{"calculator.tmpl", "info.tmpl"} {
		if t.Lookup(name) == nil {
			return nil, errs.NewValidation("web.LoadTemplates", "missing template "+name, nil)
		}
	}
	return &Templates{t: t}, nil
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind.
func (ts *Templates) render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := ts.t.ExecuteTemplate(&buf, name, data); err != nil {
		return errs.NewBiz("web.render", "execute "+name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
