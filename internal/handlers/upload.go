package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/imagenamer/internal/models"
	"github.com/lehigh-university-libraries/imagenamer/internal/renaming"
)

const messageNoFiles = "没有选择文件"

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, "上传文件过大", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, messageNoFiles, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 || files[0].Filename == "" {
		h.writeError(w, messageNoFiles, http.StatusBadRequest)
		return
	}

	prompt := strings.TrimSpace(r.FormValue("naming_prompt"))

	items := make([]models.UploadItem, 0, len(files))
	for _, header := range files {
		if header.Filename == "" {
			continue
		}
		items = append(items, readUpload(header))
	}

	report := h.service.ProcessBatch(r.Context(), prompt, items)
	h.writeJSON(w, report)
}

func readUpload(header *multipart.FileHeader) models.UploadItem {
	file, err := header.Open()
	if err != nil {
		item := renaming.NewItem(header.Filename, nil)
		item.ReadErr = err
		return item
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	item := renaming.NewItem(header.Filename, data)
	item.ReadErr = err
	return item
}
