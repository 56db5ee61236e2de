// Package assets persists uploaded files under collision-resistant names and
// hands back the relative URL a block can embed.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the path the router serves stored assets under.
const URLPrefix = "/uploads"

var errMissingDirectory = errors.New("assets: uploads directory is required")

// ServiceConfig describes where uploaded files land.
type ServiceConfig struct {
	Directory string
	Logger    *zap.Logger
}

// Service writes uploaded files to a local directory.
type Service struct {
	directory string
	logger    *zap.Logger
}

// NewService ensures the uploads directory exists and returns the service.
func NewService(cfg ServiceConfig) (*Service, error) {
	directory := strings.TrimSpace(cfg.Directory)
	if directory == "" {
		return nil, errMissingDirectory
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create uploads directory: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{directory: directory, logger: logger}, nil
}

// Directory returns the filesystem path assets are stored in.
func (s *Service) Directory() string {
	return s.directory
}

// Store persists the uploaded content under a generated name, keeping only
// the original file's extension, and returns the relative URL.
func (s *Service) Store(originalName string, content io.Reader) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	name := id.String() + sanitizeExtension(originalName)
	destination := filepath.Join(s.directory, name)

	file, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("assets: create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(destination)
		return "", fmt.Errorf("assets: write file: %w", err)
	}

	s.logger.Info("asset stored", zap.String("file", name))
	return URLPrefix + "/" + name, nil
}

// sanitizeExtension keeps a short, path-safe extension from the client's
// filename. Anything suspicious is dropped rather than rejected, since asset
// ingest accepts any file.
func sanitizeExtension(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." || len(ext) > 12 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
