package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"kamwaalay/internal/apperrors"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	PhotoDir    = "photos"
	DocumentDir = "documents"
)

var (
	ImageMimeTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	DocumentMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}
)

// StoredFile describes an upload written to disk.
type StoredFile struct {
	Path         string
	OriginalName string
	MimeType     string
	Size         int64
}

// FileInfo is a file found while walking the storage root.
type FileInfo struct {
	Path    string
	ModTime time.Time
}

// Uploader is the part of the storage controllers write uploads through.
type Uploader interface {
	SaveUpload(ctx context.Context, dir string, header *multipart.FileHeader, allowed []string) (*StoredFile, error)
	Delete(ctx context.Context, relPath string) error
	Path(relPath string) (string, error)
	URL(relPath string) string
}

// Local stores uploads below a base directory and serves them from baseURL.
type Local struct {
	basePath string
	baseURL  string
	maxBytes int64
	log      logger.Logger
}

func NewLocal(basePath, baseURL string, maxUploadMB int) (*Local, error) {
	log := logger.New("storage").Function("NewLocal")

	if basePath == "" {
		basePath = "./storage"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, log.Err("failed to create storage directory", err, "path", basePath)
	}

	return &Local{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		log:      logger.New("storage"),
	}, nil
}

// Path resolves relPath to a file below the storage root.
func (s *Local) Path(relPath string) (string, error) {
	return s.fullPath(relPath)
}

// SaveUpload validates a multipart file against the allowed mime types and
// the size limit, then writes it to dir/<uuid><ext>.
func (s *Local) SaveUpload(
	ctx context.Context,
	dir string,
	header *multipart.FileHeader,
	allowed []string,
) (*StoredFile, error) {
	log := s.log.Function("SaveUpload")

	if header == nil {
		return nil, apperrors.BadRequest("A file is required")
	}

	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return nil, apperrors.Field("file", fmt.Sprintf("File must not exceed %d MB", s.maxBytes/1024/1024))
	}

	src, err := header.Open()
	if err != nil {
		return nil, log.Err("failed to open uploaded file", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, log.Err("failed to detect mime type", err)
	}

	if !mimeAllowed(mtype, allowed) {
		return nil, apperrors.Field("file", "Unsupported file type: "+mtype.String())
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, log.Err("failed to rewind uploaded file", err)
	}

	relPath := path.Join(dir, uuid.New().String()+mtype.Extension())
	if err := s.Save(ctx, relPath, src); err != nil {
		return nil, err
	}

	return &StoredFile{
		Path:         relPath,
		OriginalName: filepath.Base(header.Filename),
		MimeType:     baseMime(mtype.String()),
		Size:         header.Size,
	}, nil
}

func (s *Local) Save(ctx context.Context, relPath string, reader io.Reader) error {
	log := s.log.Function("Save")

	fullPath, err := s.fullPath(relPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return log.Err("failed to create directory", err, "path", relPath)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return log.Err("failed to create file", err, "path", relPath)
	}

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		s.removePartial(fullPath, relPath)
		return log.Err("failed to write file", err, "path", relPath)
	}
	if err := file.Close(); err != nil {
		s.removePartial(fullPath, relPath)
		return log.Err("failed to close file", err, "path", relPath)
	}

	return nil
}

func (s *Local) removePartial(fullPath, relPath string) {
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.log.Function("removePartial").Warn("failed to remove partial file", "error", err, "path", relPath)
	}
}

func (s *Local) Delete(ctx context.Context, relPath string) error {
	fullPath, err := s.fullPath(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return s.log.Function("Delete").Err("failed to delete file", err, "path", relPath)
	}

	return nil
}

func (s *Local) Exists(ctx context.Context, relPath string) (bool, error) {
	fullPath, err := s.fullPath(relPath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *Local) URL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(relPath, "/")
}

// Files lists every regular file under the storage root with a path relative
// to it.
func (s *Local) Files(ctx context.Context) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.basePath, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.basePath, fullPath)
		if err != nil {
			return err
		}

		files = append(files, FileInfo{Path: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, s.log.Function("Files").Err("failed to walk storage directory", err)
	}

	return files, nil
}

func (s *Local) fullPath(relPath string) (string, error) {
	cleaned := filepath.Clean("/" + relPath)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage path %q", relPath)
	}
	return filepath.Join(s.basePath, cleaned), nil
}

func mimeAllowed(mtype *mimetype.MIME, allowed []string) bool {
	for _, candidate := range allowed {
		if mtype.Is(candidate) {
			return true
		}
	}
	return slices.Contains(allowed, baseMime(mtype.String()))
}

func baseMime(value string) string {
	base, _, _ := strings.Cut(value, ";")
	return strings.TrimSpace(base)
}
