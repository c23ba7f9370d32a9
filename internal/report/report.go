package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imagenamer/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// RunInfo describes the batch a report belongs to
type RunInfo struct {
	Provider  string `yaml:"provider" json:"provider"`
	Model     string `yaml:"model" json:"model"`
	Prompt    string `yaml:"prompt" json:"prompt"`
	InputDir  string `yaml:"input_dir" json:"input_dir"`
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// Document is the serialized form of a batch report
type Document struct {
	Run    RunInfo             `yaml:"run" json:"run"`
	Report models.UploadReport `yaml:"report" json:"report"`
}

// NewDocument stamps a report with run information
func NewDocument(run RunInfo, report models.UploadReport) Document {
	if run.Timestamp == "" {
		run.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	return Document{Run: run, Report: report}
}

// Write saves doc to path. The format follows the extension: .yaml/.yml, .json or .parquet.
// Parquet files hold one row per file result.
func Write(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return writeFile(path, data)
	case ".json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return writeFile(path, data)
	case ".parquet":
		return writeParquet(path, doc.Report.Results)
	default:
		return fmt.Errorf("unsupported report format: %s (supported: .yaml, .json, .parquet)", ext)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeParquet(path string, results []models.FileResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[models.FileResult](file)
	if _, err := writer.Write(results); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	return nil
}
