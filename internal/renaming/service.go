package renaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/imagenamer/internal/models"
	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
	"github.com/lehigh-university-libraries/imagenamer/internal/storage"
)

// Outcome messages returned to clients
const (
	MessageUnsupportedFormat = "不支持的文件格式"
	messageFailedPrefix      = "处理失败: "
)

// ErrUnsupportedFormat is returned for files whose extension is not an accepted image type
var ErrUnsupportedFormat = errors.New("unsupported file format")

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
}

// IsSupported reports whether ext (with dot, any case) is an accepted image extension
func IsSupported(ext string) bool {
	return supportedExtensions[strings.ToLower(ext)]
}

// NameExtractor produces a raw filename suggestion for an image
type NameExtractor interface {
	Extract(ctx context.Context, req naming.Request) string
}

// Service renames uploaded images using a vision model
type Service struct {
	store     *storage.Store
	extractor NameExtractor
	now       func() time.Time
	readFile  func(string) ([]byte, error)
}

// NewService creates a renaming service
func NewService(store *storage.Store, extractor NameExtractor) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		now:       time.Now,
		readFile:  os.ReadFile,
	}
}

// NewItem builds an UploadItem from a client supplied filename
func NewItem(filename string, data []byte) models.UploadItem {
	return models.UploadItem{
		OriginalName: filename,
		Extension:    strings.ToLower(filepath.Ext(filename)),
		Data:         data,
	}
}

// ProcessBatch renames each item in order. A failure on one file is recorded
// in the report and never stops the rest of the batch.
func (s *Service) ProcessBatch(ctx context.Context, prompt string, items []models.UploadItem) models.UploadReport {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = naming.DefaultPrompt
	}

	batchID := uuid.New().String()
	report := models.UploadReport{Results: make([]models.FileResult, 0, len(items))}

	slog.Info("Processing batch", "batch_id", batchID, "files", len(items))

	for _, item := range items {
		record, err := s.processFile(ctx, batchID, prompt, item)
		switch {
		case errors.Is(err, ErrUnsupportedFormat):
			slog.Warn("Skipping unsupported file", "file", item.OriginalName, "extension", item.Extension)
			report.Add(models.Failed(item.OriginalName, MessageUnsupportedFormat))
		case err != nil:
			slog.Error("Failed to process file", "file", item.OriginalName, "err", err)
			report.Add(models.Failed(item.OriginalName, messageFailedPrefix+err.Error()))
		default:
			slog.Info("Image renamed", "original", item.OriginalName, "new_name", record.FinalName)
			report.Add(models.Succeeded(item.OriginalName, record))
		}
	}

	slog.Info("Batch complete", "batch_id", batchID, "total", report.TotalProcessed, "success", report.SuccessCount)
	return report
}

func (s *Service) processFile(ctx context.Context, batchID, prompt string, item models.UploadItem) (*models.FilenameRecord, error) {
	if !IsSupported(item.Extension) {
		return nil, ErrUnsupportedFormat
	}
	if item.ReadErr != nil {
		return nil, fmt.Errorf("failed to read upload: %w", item.ReadErr)
	}

	stagedPath, err := s.store.Stage(batchID, item.OriginalName, item.Data)
	if err != nil {
		return nil, err
	}

	image, err := os.ReadFile(stagedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}

	aiName := s.extractor.Extract(ctx, naming.Request{
		Prompt:   prompt,
		Image:    image,
		MIMEType: naming.MIMETypeForExtension(item.Extension),
	})

	cleaned := naming.Sanitize(aiName)
	candidate := naming.Generate(cleaned, item.Extension, s.now())

	record, err := s.store.Place(stagedPath, candidate)
	if err != nil {
		return nil, err
	}
	record.CleanedName = cleaned
	record.AIGeneratedName = aiName

	return record, nil
}

// ProcessDirectory renames every regular file in dir, in name order.
// Unsupported files are reported without being read, and a file that cannot
// be read is reported as a failure without stopping the run.
func (s *Service) ProcessDirectory(ctx context.Context, prompt, dir string) (models.UploadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.UploadReport{}, fmt.Errorf("failed to read input directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	items := make([]models.UploadItem, 0, len(names))
	for _, name := range names {
		item := NewItem(name, nil)
		if IsSupported(item.Extension) {
			item.Data, item.ReadErr = s.readFile(filepath.Join(dir, name))
		}
		items = append(items, item)
	}

	return s.ProcessBatch(ctx, prompt, items), nil
}
