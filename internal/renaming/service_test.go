package renaming

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/imagenamer/internal/models"
	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
	"github.com/lehigh-university-libraries/imagenamer/internal/storage"
)

type fakeExtractor struct {
	name     string
	requests []naming.Request
}

func (f *fakeExtractor) Extract(ctx context.Context, req naming.Request) string {
	f.requests = append(f.requests, req)
	return f.name
}

func newTestService(t *testing.T, extractor NameExtractor) (*Service, *storage.Store) {
	t.Helper()
	root := t.TempDir()
	store := storage.New(filepath.Join(root, "uploads"), filepath.Join(root, "renamed"))
	if err := store.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return NewService(store, extractor), store
}

func TestIsSupported(t *testing.T) {
	for _, ext := range []string{".jpg", ".JPEG", ".png", ".bmp", ".Tiff"} {
		if !IsSupported(ext) {
			t.Errorf("Expected %s to be supported", ext)
		}
	}
	for _, ext := range []string{".gif", ".tif", ".webp", "", "jpg"} {
		if IsSupported(ext) {
			t.Errorf("Expected %s to be rejected", ext)
		}
	}
}

func TestProcessBatchDistinctExtensions(t *testing.T) {
	extractor := &fakeExtractor{name: "TEST"}
	service, store := newTestService(t, extractor)

	report := service.ProcessBatch(context.Background(), "name=TEST", []models.UploadItem{
		NewItem("a.jpg", []byte("a")),
		NewItem("b.png", []byte("b")),
	})

	if report.TotalProcessed != 2 || report.SuccessCount != 2 {
		t.Fatalf("Expected 2/2 successes, got %d/%d", report.SuccessCount, report.TotalProcessed)
	}
	expected := []string{"TEST.jpg", "TEST.png"}
	for i, r := range report.Results {
		if r.Status != models.StatusSuccess {
			t.Errorf("Result %d failed: %s", i, r.Message)
		}
		if r.NewName != expected[i] {
			t.Errorf("Expected %s, got %s", expected[i], r.NewName)
		}
		if r.AIGeneratedName != "TEST" {
			t.Errorf("Expected ai_generated_name TEST, got %s", r.AIGeneratedName)
		}
		if _, err := os.Stat(filepath.Join(store.RenamedDir(), expected[i])); err != nil {
			t.Errorf("Renamed file missing: %v", err)
		}
	}

	for _, req := range extractor.requests {
		if req.Prompt != "name=TEST" {
			t.Errorf("Expected batch prompt, got %s", req.Prompt)
		}
	}
	if extractor.requests[1].MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %s", extractor.requests[1].MIMEType)
	}
}

func TestProcessBatchCollisions(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: "发票"})

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		NewItem("1.jpg", []byte("1")),
		NewItem("2.jpg", []byte("2")),
		NewItem("3.JPG", []byte("3")),
	})

	expected := []string{"发票.jpg", "发票_1.jpg", "发票_2.jpg"}
	for i, r := range report.Results {
		if r.NewName != expected[i] {
			t.Errorf("Expected %s, got %s", expected[i], r.NewName)
		}
	}
}

func TestProcessBatchUnsupportedFormat(t *testing.T) {
	extractor := &fakeExtractor{name: "TEST"}
	service, _ := newTestService(t, extractor)

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		NewItem("x.gif", []byte("gif")),
	})

	if len(extractor.requests) != 0 {
		t.Error("Extractor should not be called for unsupported files")
	}
	if report.TotalProcessed != 1 || report.SuccessCount != 0 {
		t.Fatalf("Unexpected counts %d/%d", report.SuccessCount, report.TotalProcessed)
	}
	r := report.Results[0]
	if r.Status != models.StatusError || r.Message != MessageUnsupportedFormat {
		t.Errorf("Unexpected outcome %+v", r)
	}
	if r.OriginalName != "x.gif" {
		t.Errorf("Expected original name x.gif, got %s", r.OriginalName)
	}
}

func TestProcessBatchFallbackCountsAsSuccess(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: naming.UnknownImage})
	service.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		NewItem("c.bmp", []byte("c")),
	})

	r := report.Results[0]
	if r.Status != models.StatusSuccess || report.SuccessCount != 1 {
		t.Fatalf("Fallback should count as success: %+v", r)
	}
	if r.NewName != "未识别_20240102_030405.bmp" {
		t.Errorf("Unexpected fallback name %s", r.NewName)
	}
	if r.AIGeneratedName != naming.UnknownImage {
		t.Errorf("Expected sentinel as ai_generated_name, got %s", r.AIGeneratedName)
	}
}

func TestProcessBatchFallbackPattern(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: ""})

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		NewItem("c.bmp", []byte("c")),
	})

	pattern := regexp.MustCompile(`^未识别_\d{8}_\d{6}\.bmp$`)
	if !pattern.MatchString(report.Results[0].NewName) {
		t.Errorf("Unexpected fallback name %s", report.Results[0].NewName)
	}
}

func TestProcessBatchPerFileFailure(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: "ok"})

	broken := NewItem("broken.png", nil)
	broken.ReadErr = errors.New("unexpected EOF")

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		broken,
		NewItem("fine.png", []byte("data")),
	})

	if report.TotalProcessed != 2 || report.SuccessCount != 1 {
		t.Fatalf("Unexpected counts %d/%d", report.SuccessCount, report.TotalProcessed)
	}
	if r := report.Results[0]; r.Status != models.StatusError || r.Message != "处理失败: failed to read upload: unexpected EOF" {
		t.Errorf("Unexpected failure outcome %+v", r)
	}
	if r := report.Results[1]; r.Status != models.StatusSuccess || r.NewName != "ok.png" {
		t.Errorf("Batch should continue after a failure: %+v", r)
	}
}

func TestProcessBatchSanitizesModelOutput(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: `2022/05/10: "客户"?`})

	report := service.ProcessBatch(context.Background(), "", []models.UploadItem{
		NewItem("scan.jpeg", []byte("x")),
	})

	r := report.Results[0]
	if r.NewName != "20220510 客户.jpeg" {
		t.Errorf("Unexpected name %s", r.NewName)
	}
	if r.AIGeneratedName != `2022/05/10: "客户"?` {
		t.Errorf("ai_generated_name should be the raw model text, got %s", r.AIGeneratedName)
	}
}

func TestProcessDirectory(t *testing.T) {
	service, store := newTestService(t, &fakeExtractor{name: "doc"})

	input := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(input, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := service.ProcessDirectory(context.Background(), "", input)
	if err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}

	if report.TotalProcessed != 3 || report.SuccessCount != 2 {
		t.Fatalf("Unexpected counts %d/%d", report.SuccessCount, report.TotalProcessed)
	}
	if report.Results[0].OriginalName != "a.jpg" || report.Results[2].Message != MessageUnsupportedFormat {
		t.Errorf("Unexpected results %+v", report.Results)
	}

	files, err := store.RenamedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0] != "doc.jpg" || files[1] != "doc.png" {
		t.Errorf("Unexpected renamed files %v", files)
	}

	if _, err := service.ProcessDirectory(context.Background(), "", filepath.Join(input, "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestProcessDirectoryUnreadableFile(t *testing.T) {
	service, _ := newTestService(t, &fakeExtractor{name: "doc"})

	input := t.TempDir()
	for _, name := range []string{"locked.jpg", "open.jpg", "movie.mov"} {
		if err := os.WriteFile(filepath.Join(input, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var read []string
	service.readFile = func(path string) ([]byte, error) {
		read = append(read, filepath.Base(path))
		if filepath.Base(path) == "locked.jpg" {
			return nil, os.ErrPermission
		}
		return os.ReadFile(path)
	}

	report, err := service.ProcessDirectory(context.Background(), "", input)
	if err != nil {
		t.Fatalf("ProcessDirectory should not fail on one unreadable file: %v", err)
	}

	if report.TotalProcessed != 3 || report.SuccessCount != 1 {
		t.Fatalf("Unexpected counts %d/%d", report.SuccessCount, report.TotalProcessed)
	}
	byName := map[string]models.FileResult{}
	for _, r := range report.Results {
		byName[r.OriginalName] = r
	}
	if r := byName["locked.jpg"]; r.Status != models.StatusError || !strings.HasPrefix(r.Message, "处理失败: ") {
		t.Errorf("Unexpected outcome for unreadable file %+v", r)
	}
	if r := byName["open.jpg"]; r.Status != models.StatusSuccess || r.NewName != "doc.jpg" {
		t.Errorf("Unexpected outcome for readable file %+v", r)
	}
	if r := byName["movie.mov"]; r.Message != MessageUnsupportedFormat {
		t.Errorf("Unexpected outcome for unsupported file %+v", r)
	}

	for _, name := range read {
		if name == "movie.mov" {
			t.Error("Unsupported files should not be read")
		}
	}
}
