package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/domain"
	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/ports"
)

// --- DTOs ---

type feedDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Description string    `json:"description"`
	FeedUrl     string    `json:"feedUrl"`
	UploadDate  time.Time `json:"uploadDate"`
}

func toFeedDTO(f *domain.Feed) feedDTO {
	return feedDTO{
		ID:          f.ID,
		UserID:      f.UserID,
		Description: f.Description,
		FeedUrl:     f.FeedUrl,
		UploadDate:  f.UploadDate,
	}
}

// --- FEEDS ---

// UploadFeed : multipart userId + fileName + description? + file.
func (h *Handler) UploadFeed(c *gin.Context) {
	userID := c.PostForm("userId")
	fileName := c.PostForm("fileName")
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields."})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file payload."})
		return
	}
	defer file.Close()

	feed, err := h.feeds.UploadFeed(c.Request.Context(), ports.UploadFeedCmd{
		UserID:      userID,
		FileName:    fileName,
		Description: description,
		File:        file,
	})
	if err != nil {
		h.writeError(c, "Error uploading feed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feed uploaded successfully.",
		"feedId":  feed.ID,
	})
}

// GetUserFeeds : filtre userId optionnel, pageSize, curseur opaque.
// Pas de pageNumber : l'avancement se fait uniquement par token.
func (h *Handler) GetUserFeeds(c *gin.Context) {
	userID := c.Query("userId")
	cursor := c.Query("cursor")

	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be a positive integer."})
		return
	}

	feeds, nextCursor, err := h.feeds.GetUserFeeds(c.Request.Context(), userID, pageSize, cursor)
	if err != nil {
		h.writeError(c, "Error retrieving feeds", err)
		return
	}

	dtos := make([]feedDTO, 0, len(feeds))
	for _, f := range feeds {
		dtos = append(dtos, toFeedDTO(f))
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds":      dtos,
		"nextCursor": nextCursor,
	})
}

// --- USERS ---

func (h *Handler) CreateUser(c *gin.Context) {
	user, err := h.identity.CreateUser(c.Request.Context())
	if err != nil {
		h.writeError(c, "Error creating user", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":     user.ID,
		"username":   user.Username,
		"profilePic": user.ProfilePicUrl,
	})
}

// --- ERREURS ---

// writeError mappe la taxonomie du domaine : erreurs de validation en
// 400 (corrigeables par le client), le reste en 500 avec le sous-système
// fautif identifiable dans le message.
func (h *Handler) writeError(c *gin.Context, prefix string, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingFields), errors.Is(err, domain.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error(prefix, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": prefix + ": " + err.Error()})
	}
}
