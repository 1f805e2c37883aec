package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/letterwriter/letterwriter/internal/config"
	"github.com/letterwriter/letterwriter/internal/googleauth"
	"github.com/letterwriter/letterwriter/internal/models"
	"github.com/letterwriter/letterwriter/internal/users"
	"github.com/letterwriter/letterwriter/pkg/logger"
	"github.com/letterwriter/letterwriter/pkg/middleware"
)

const googleDocMimeType = "application/vnd.google-apps.document"

// DriveHandler exposes the Drive browsing endpoints: save an arbitrary
// document, list previously exported docs, fetch one back as plain text.
type DriveHandler struct {
	cfg    *config.Config
	users  *users.Service
	google *googleauth.Provider
}

func NewDriveHandler(cfg *config.Config, u *users.Service, g *googleauth.Provider) *DriveHandler {
	return &DriveHandler{cfg: cfg, users: u, google: g}
}

// Register routes under /api/drive. Every route requires a session token.
func (h *DriveHandler) Register(rg *gin.RouterGroup, verifier middleware.Verifier) {
	d := rg.Group("/api/drive", middleware.AuthMiddleware(verifier))
	d.POST("/save", h.Save)
	d.GET("/files", h.ListFiles)
	d.GET("/files/:fileId/content", h.FileContent)
}

// driveService builds a Drive client for the caller, or writes the 401
// missing-credential body and returns nil.
func (h *DriveHandler) driveService(c *gin.Context) (*drive.Service, *models.User) {
	u, err := h.users.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return nil, nil
	}
	if u.AccessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message":     "No access token found",
			"error":       "missing_token",
			"redirectUrl": h.cfg.Frontend.BackendURL + "/api/auth/google",
		})
		return nil, nil
	}
	svc, err := drive.NewService(c.Request.Context(),
		option.WithHTTPClient(h.google.Client(c.Request.Context(), u.AccessToken)))
	if err != nil {
		logger.Errorf("failed to create Drive service: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to access Google Drive"})
		return nil, nil
	}
	return svc, u
}

// Save stores {title, content} as a new Google Doc in the user's Drive.
func (h *DriveHandler) Save(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	svc, _ := h.driveService(c)
	if svc == nil {
		return
	}

	meta := &drive.File{Name: req.Title, MimeType: googleDocMimeType}
	file, err := svc.Files.Create(meta).
		Media(strings.NewReader(req.Content), googleapi.ContentType("text/html")).
		Fields("id", "name", "webViewLink").
		Context(c.Request.Context()).Do()
	if err != nil {
		logger.Errorf("error saving to Google Drive: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save to Google Drive"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": file.Id, "name": file.Name, "webViewLink": file.WebViewLink})
}

// ListFiles returns the user's Google Docs, newest first.
func (h *DriveHandler) ListFiles(c *gin.Context) {
	svc, _ := h.driveService(c)
	if svc == nil {
		return
	}
	res, err := svc.Files.List().
		Q("mimeType='" + googleDocMimeType + "'").
		Fields("files(id, name, mimeType, webViewLink, createdTime)").
		OrderBy("createdTime desc").
		Context(c.Request.Context()).Do()
	if err != nil {
		logger.Errorf("error listing files: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to list files"})
		return
	}
	c.JSON(http.StatusOK, res.Files)
}

// FileContent exports one Google Doc as plain text.
func (h *DriveHandler) FileContent(c *gin.Context) {
	svc, _ := h.driveService(c)
	if svc == nil {
		return
	}
	resp, err := svc.Files.Export(c.Param("fileId"), "text/plain").Context(c.Request.Context()).Download()
	if err != nil {
		logger.Errorf("error getting file content: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get file content"})
		return
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get file content"})
		return
	}
	c.JSON(http.StatusOK, string(body))
}
