package handlers

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/models"
	"github.com/snappy-loop/thumbnails/internal/prompt"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// pageTemplates is the parsed set of all page templates.
var pageTemplates = mustParseTemplates()

func mustParseTemplates() *template.Template {
	t, err := template.New("").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		panic("parse templates: " + err.Error())
	}
	return t
}

// executeTemplate executes the named template (e.g. "index") with data into w.
func executeTemplate(w io.Writer, name string, data interface{}) error {
	return pageTemplates.ExecuteTemplate(w, name, data)
}

type indexPage struct {
	Styles      []models.StyleInfo
	UpgradeURLs []string
}

// Index serves GET /: topic input, style selector and result panel.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := executeTemplate(w, "index", indexPage{Styles: prompt.StyleInfos(), UpgradeURLs: h.upgradeURLs}); err != nil {
		log.Error().Err(err).Msg("Failed to render index")
	}
}
