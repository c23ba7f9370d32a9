package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ DefaultPrompt string }{DefaultPrompt: naming.DefaultPrompt}
	if err := indexTemplate.Execute(w, data); err != nil {
		slog.Error("Unable to render index", "err", err)
	}
}
