package web

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"taskboard/internal/domain"
)

const indexTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

// templateRenderer implements echo.Renderer over the embedded templates.
type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: t}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type indexPage struct {
	Tasks    []*domain.Task
	Stats    domain.Stats
	Statuses []domain.Status
}

func newIndexPage(board *domain.Board) indexPage {
	tasks := board.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return indexPage{
		Tasks:    tasks,
		Stats:    board.Stats,
		Statuses: domain.Statuses,
	}
}
