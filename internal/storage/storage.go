package storage

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/lehigh-university-libraries/imagenamer/internal/models"
)

// Store owns the staging and renamed directories on disk.
// The directory scan is the only index of existing names.
type Store struct {
	uploadDir  string
	renamedDir string
	mu         sync.Mutex
}

// New creates a store rooted at the given directories
func New(uploadDir, renamedDir string) *Store {
	return &Store{
		uploadDir:  uploadDir,
		renamedDir: renamedDir,
	}
}

// UploadDir returns the staging directory
func (s *Store) UploadDir() string {
	return s.uploadDir
}

// RenamedDir returns the destination directory
func (s *Store) RenamedDir() string {
	return s.renamedDir
}

// EnsureDirs creates both working directories
func (s *Store) EnsureDirs() error {
	for _, dir := range []string{s.uploadDir, s.renamedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Stage writes raw upload bytes under the staging directory for a batch
func (s *Store) Stage(batchID, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.uploadDir, batchID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}

	return path, nil
}

// ResolveName returns candidate, or candidate with a _N suffix before the
// extension, such that no file of that name exists in the renamed directory.
func (s *Store) ResolveName(candidate string) (string, error) {
	ext := filepath.Ext(candidate)
	base := candidate[:len(candidate)-len(ext)]

	name := candidate
	for counter := 1; ; counter++ {
		exists, err := s.exists(name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = base + "_" + strconv.Itoa(counter) + ext
	}
}

func (s *Store) exists(name string) (bool, error) {
	_, err := os.Lstat(filepath.Join(s.renamedDir, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", name, err)
}

// Place resolves a unique name for candidate and copies src there.
// Resolution and copy happen under the store lock so concurrent batches
// cannot claim the same name.
func (s *Store) Place(src, candidate string) (*models.FilenameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.renamedDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create renamed directory: %w", err)
	}

	finalName, err := s.ResolveName(candidate)
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(s.renamedDir, finalName)
	if err := copyFile(src, dst); err != nil {
		return nil, err
	}

	return &models.FilenameRecord{
		FinalName:       finalName,
		DestinationPath: dst,
	}, nil
}

// copyFile copies src to a new file dst, keeping permissions and modification time
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat staged file: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(dst), err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(dst), err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		slog.Warn("Unable to preserve modification time", "path", dst, "err", err)
	}

	return nil
}

// RenamedFiles lists regular files in the renamed directory, sorted by name
func (s *Store) RenamedFiles() ([]string, error) {
	entries, err := os.ReadDir(s.renamedDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read renamed directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Archive writes a deflate compressed zip of every renamed file to w
func (s *Store) Archive(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.RenamedFiles()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range names {
		if err := addToArchive(zw, filepath.Join(s.renamedDir, name), name); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}

	slog.Info("Archive created", "files", len(names))
	return nil
}

func addToArchive(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build zip header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}

// Clear removes and recreates both working directories
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dir := range []string{s.uploadDir, s.renamedDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", dir, err)
		}
	}

	slog.Info("Working directories cleared", "uploads", s.uploadDir, "renamed", s.renamedDir)
	return nil
}
