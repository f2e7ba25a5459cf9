package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"openlaw-backend/docx"
	"openlaw-backend/gateway"
	"openlaw-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrNoDocumentContent = errors.New("no document content provided")
	ErrRenderFailed      = errors.New("failed to render document")
	ErrNoArchive         = errors.New("document archive not configured")
)

// DocumentService renders generated document text into downloadable
// DOCX files and keeps an archived copy, and fronts PDF analysis.
type DocumentService struct {
	gw    gateway.Gateway
	store storage.Storage
}

// DocumentServiceOption is a functional option for DocumentService
type DocumentServiceOption func(*DocumentService)

// DocWithGateway sets the extraction gateway used for PDF analysis
func DocWithGateway(gw gateway.Gateway) DocumentServiceOption {
	return func(s *DocumentService) {
		s.gw = gw
	}
}

// DocWithStorage sets the archive storage for rendered documents
func DocWithStorage(store storage.Storage) DocumentServiceOption {
	return func(s *DocumentService) {
		s.store = store
	}
}

// NewDocumentService creates a new document service
func NewDocumentService(opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RenderedDocument is a downloadable rendering of generated content.
// ArchivePath is the storage path of the archived copy, empty when no
// archive store is configured or the archival write failed.
type RenderedDocument struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchivePath string
}

// Render converts document text into a DOCX attachment and archives a
// copy. Archival failures are logged, never surfaced: the download is
// the product, the archive is best-effort.
func (s *DocumentService) Render(ctx context.Context, content, documentType, filename string) (*RenderedDocument, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoDocumentContent
	}

	if filename == "" {
		docType := documentType
		if docType == "" {
			docType = "document"
		}
		filename = strings.ReplaceAll(docType, " ", "_") + ".docx"
	}
	if !strings.HasSuffix(filename, ".docx") {
		filename += ".docx"
	}

	data, err := docx.Render(content)
	if err != nil {
		return nil, ErrRenderFailed
	}

	archivePath := ""
	if s.store != nil {
		path, err := s.store.Upload(ctx, uuid.New(), filename, bytes.NewReader(data))
		if err != nil {
			log.Printf("Warning: failed to archive rendered document %s: %v", filename, err)
		} else {
			archivePath = path
		}
	}

	return &RenderedDocument{
		Filename:    filename,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Data:        data,
		ArchivePath: archivePath,
	}, nil
}

// Fetch retrieves an archived document by storage path, along with its
// content type.
func (s *DocumentService) Fetch(ctx context.Context, storagePath string) (io.ReadCloser, string, error) {
	if s.store == nil {
		return nil, "", ErrNoArchive
	}
	reader, err := s.store.Download(ctx, storagePath)
	if err != nil {
		return nil, "", err
	}
	return reader, storage.ContentTypeFor(storagePath), nil
}

// Remove deletes an archived document by storage path.
func (s *DocumentService) Remove(ctx context.Context, storagePath string) error {
	if s.store == nil {
		return ErrNoArchive
	}
	return s.store.Delete(ctx, storagePath)
}

// Analyze summarizes an uploaded PDF through the extraction gateway.
func (s *DocumentService) Analyze(ctx context.Context, pdf []byte) (string, error) {
	if s.gw == nil {
		return "", errors.New("extraction gateway not set")
	}
	return s.gw.AnalyzeDocument(ctx, pdf)
}
