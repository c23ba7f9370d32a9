package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const archiveName = "renamed_images.zip"

func (h *Handler) HandleDownloadAll(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.store.Archive(&buf); err != nil {
		h.writeError(w, "下载失败: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write archive", "err", err)
	}
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.writeError(w, "清空失败: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"message": "文件已清空"})
}

func (h *Handler) HandleRenamedFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// Prevent directory traversal attacks
	if name == "" || name != filepath.Base(name) || name == ".." {
		h.writeError(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.store.RenamedDir(), name))
}
