package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"openlaw-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for conversational turns
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Search handles POST /search: one conversational turn. Accepts form
// fields `query` and `chat_id`, plus an optional `file` (PDF) for
// document analysis.
func (h *ChatHandler) Search(c *gin.Context) {
	query := c.PostForm("query")
	chatID := c.PostForm("chat_id")

	var pdf []byte
	var filename string
	if fileHeader, err := c.FormFile("file"); err == nil {
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

		pdf, err = io.ReadAll(file)
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
		filename = fileHeader.Filename
	}

	resp, err := h.chatService.ProcessTurn(c.Request.Context(), service.ChatRequest{
		Query:    query,
		ChatID:   chatID,
		PDF:      pdf,
		Filename: filename,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_QUERY",
					"message": "No query or file provided",
				},
			})
			return
		}
		log.Printf("Error processing turn: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TURN_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateTitleRequest is the request body for chat title generation
type GenerateTitleRequest struct {
	Conversation string `json:"conversation" binding:"required"`
}

// GenerateTitle handles POST /generate-title
func (h *ChatHandler) GenerateTitle(c *gin.Context) {
	var req GenerateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	title, err := h.chatService.Title(c.Request.Context(), req.Conversation)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TITLE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"title": title})
}
