package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"openlaw-backend/service"

	"github.com/gin-gonic/gin"
)

// DocumentHandler handles HTTP requests for document rendering and
// analysis
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// GenerateDocument handles POST /generate-document: renders generated
// document text as a DOCX attachment.
func (h *DocumentHandler) GenerateDocument(c *gin.Context) {
	content := c.PostForm("document_content")
	documentType := c.PostForm("document_type")
	filename := c.PostForm("filename")

	doc, err := h.documentService.Render(c.Request.Context(), content, documentType, filename)
	if err != nil {
		if errors.Is(err, service.ErrNoDocumentContent) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_CONTENT",
					"message": "No document content provided",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RENDER_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	if doc.ArchivePath != "" {
		c.Header("X-Archive-Path", doc.ArchivePath)
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// Download handles GET /documents/*path: streams an archived document
// back to the caller.
func (h *DocumentHandler) Download(c *gin.Context) {
	storagePath := strings.TrimPrefix(c.Param("path"), "/")
	if storagePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PATH",
				"message": "Document path is required",
			},
		})
		return
	}

	reader, contentType, err := h.documentService.Fetch(c.Request.Context(), storagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": "Failed to read document",
			},
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+path.Base(storagePath)+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// Delete handles DELETE /documents/*path: removes an archived document.
func (h *DocumentHandler) Delete(c *gin.Context) {
	storagePath := strings.TrimPrefix(c.Param("path"), "/")
	if storagePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PATH",
				"message": "Document path is required",
			},
		})
		return
	}

	if err := h.documentService.Remove(c.Request.Context(), storagePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": "Failed to delete document",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Upload handles POST /upload: analyzes an uploaded PDF document.
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_FILE",
				"message": "No file provided",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE",
				"message": "Could not read uploaded file",
			},
		})
		return
	}
	defer file.Close()

	pdf, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE",
				"message": "Could not read uploaded file",
			},
		})
		return
	}

	answer, err := h.documentService.Analyze(c.Request.Context(), pdf)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": "Failed to analyze file",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
