// Package render turns view models into HTML pages and fragments.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abrezinsky/electionview/internal/models"
	"github.com/abrezinsky/electionview/internal/services"
)

// Page names
const (
	PageIndex         = "index"
	PageAdminLogin    = "admin_login"
	PageAdminSettings = "admin_settings"
)

// Fragment targets in the index page
const (
	TargetYearSelect = "#%s-year%d"
	TargetPanel      = "#%s-results"
)

// Renderer holds the parsed templates
type Renderer struct {
	pages   map[string]*template.Template
	printer *message.Printer
}

// New parses every template in templatesFS. Numbers are grouped for locale.
func New(templatesFS fs.FS, locale language.Tag) (*Renderer, error) {
	r := &Renderer{
		pages:   make(map[string]*template.Template),
		printer: message.NewPrinter(locale),
	}

	sets := []struct {
		name  string
		files []string
	}{
		{PageIndex, []string{"index.html", "partials.html"}},
		{PageAdminLogin, []string{"admin/login.html"}},
		{PageAdminSettings, []string{"admin/layout.html", "admin/settings.html"}},
	}
	for _, set := range sets {
		t, err := template.New(path.Base(set.files[0])).Funcs(r.funcs()).ParseFS(templatesFS, set.files...)
		if err != nil {
			return nil, fmt.Errorf("%s template: %w", set.name, err)
		}
		r.pages[set.name] = t
	}
	return r, nil
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"num": func(n int) string {
			return r.printer.Sprintf("%d", n)
		},
		"inc": func(n int) int { return n + 1 },
		"isTab": func(active, tab models.Tab) bool {
			return active == tab
		},
		"signed": func(n int) string {
			if n < 0 {
				return "-" + r.printer.Sprintf("%d", -n)
			}
			return "+" + r.printer.Sprintf("%d", n)
		},
	}
}

// Page writes the full page name rendered with data to w
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.Execute(w, data)
}

// Panel renders the result fragment of p's tab
func (r *Renderer) Panel(p *services.Panel) (string, error) {
	return r.fragment("panel_"+string(p.Tab), p)
}

// YearOptionsData is the data of the year options fragment
type YearOptionsData struct {
	Options  []int
	Selected int
}

// YearOptions renders the options of a year select
func (r *Renderer) YearOptions(options []int, selected int) (string, error) {
	return r.fragment("year_options", YearOptionsData{Options: options, Selected: selected})
}

// PanelTarget is the element id replaced by the fragment of tab
func PanelTarget(tab models.Tab) string {
	return fmt.Sprintf(TargetPanel, tab)
}

// YearSelectTarget is the element id of year select slot of tab
func YearSelectTarget(tab models.Tab, slot int) string {
	return fmt.Sprintf(TargetYearSelect, tab, slot+1)
}

func (r *Renderer) fragment(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.pages[PageIndex].ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
