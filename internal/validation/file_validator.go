package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Extensions accepted per file role
var (
	DesignExtensions = []string{".yaml", ".yml", ".json"}
	TableExtensions  = []string{".csv", ".txt", ".xlsx", ".xlsm"}
	ExportExtensions = []string{".csv", ".xlsx"}
)

// ErrFileTooLarge is returned when an input file exceeds the size limit
var ErrFileTooLarge = errors.New("file too large")

// FileValidator checks the files the command line tools read and write
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a new file validator. A positive maxBytes caps input file size.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// ValidateFile checks that path is a readable regular file within the size limit
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, path, info.Size(), v.maxBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDesignFile checks a YAML or JSON design file
func (v *FileValidator) ValidateDesignFile(path string) error {
	if err := checkExtension(path, "design", DesignExtensions); err != nil {
		return err
	}
	return v.ValidateFile(path)
}

// ValidateTableFile checks a CSV or XLSX data file. Office lock files are rejected.
func (v *FileValidator) ValidateTableFile(path string) error {
	if err := checkExtension(path, "table", TableExtensions); err != nil {
		return err
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}
	return v.ValidateFile(path)
}

// ValidateOutputFile checks the extension of an export target and makes sure
// its directory exists and is writable
func (v *FileValidator) ValidateOutputFile(path string) error {
	if err := checkExtension(path, "export", ExportExtensions); err != nil {
		return err
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func checkExtension(path, role string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(allowed, ext) {
		return fmt.Errorf("unsupported %s file %q: use %s", role, path, strings.Join(allowed, ", "))
	}
	return nil
}
