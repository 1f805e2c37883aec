package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/letterwriter/letterwriter/internal/apperr"
	"github.com/letterwriter/letterwriter/internal/config"
	"github.com/letterwriter/letterwriter/internal/export"
	"github.com/letterwriter/letterwriter/internal/letters"
	"github.com/letterwriter/letterwriter/pkg/logger"
	"github.com/letterwriter/letterwriter/pkg/middleware"
)

// LetterHandler serves the owner-scoped letter CRUD plus the Drive export.
type LetterHandler struct {
	cfg      *config.Config
	svc      *letters.Service
	exporter *export.Exporter
}

func NewLetterHandler(cfg *config.Config, svc *letters.Service, e *export.Exporter) *LetterHandler {
	return &LetterHandler{cfg: cfg, svc: svc, exporter: e}
}

// Register routes under /api/letters. Every route requires a session token.
func (h *LetterHandler) Register(rg *gin.RouterGroup, verifier middleware.Verifier) {
	l := rg.Group("/api/letters", middleware.AuthMiddleware(verifier))
	l.POST("", h.Create)
	l.GET("", h.List)
	l.GET("/:id", h.Get)
	l.PUT("/:id", h.Update)
	l.DELETE("/:id", h.Delete)
	l.POST("/:id/save-to-drive", h.SaveToDrive)
}

type letterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	IsDraft bool   `json:"isDraft"`
}

func (h *LetterHandler) Create(c *gin.Context) {
	var req letterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	l, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req.Title, req.Content, req.IsDraft)
	if err != nil {
		logger.Errorf("create letter error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create letter"})
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *LetterHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		logger.Errorf("get letters error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get letters"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *LetterHandler) Get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		h.respondStoreError(c, err, "view")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LetterHandler) Update(c *gin.Context) {
	var req letterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	l, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Title, req.Content, req.IsDraft)
	if err != nil {
		h.respondStoreError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LetterHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		h.respondStoreError(c, err, "delete")
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveToDrive exports the letter to the owner's Google Drive and returns the
// created document id.
func (h *LetterHandler) SaveToDrive(c *gin.Context) {
	userID := middleware.UserID(c)
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondStoreError(c, err, "save")
		return
	}

	docID, err := h.exporter.Export(c.Request.Context(), l)
	if err != nil {
		h.respondExportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documentId": docID})
}

// respondStoreError maps ownership-policy failures onto the REST surface.
func (h *LetterHandler) respondStoreError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Letter not found"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to " + action + " this letter"})
	default:
		logger.Errorf("letter %s error: %v", action, err)
		body := gin.H{"message": "Failed to " + action + " letter"}
		if h.cfg.IsDevelopment() {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *LetterHandler) respondExportError(c *gin.Context, err error) {
	if ce, ok := apperr.AsCredential(err); ok {
		switch ce.Code {
		case apperr.CodeAPINotEnabled:
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": ce.Message, "error": ce.Code, "details": ce.Detail})
		default:
			body := gin.H{"message": ce.Message, "error": ce.Code}
			if ce.RedirectURL != "" {
				body["redirectUrl"] = ce.RedirectURL
			}
			c.JSON(http.StatusUnauthorized, body)
		}
		return
	}
	if errors.Is(err, apperr.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found for this letter"})
		return
	}
	logger.Errorf("save to drive error: %v", err)
	body := gin.H{"message": "Failed to save to Google Drive"}
	if h.cfg.IsDevelopment() {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
