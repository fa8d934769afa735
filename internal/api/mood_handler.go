package api

import (
	"errors"
	"net/http"

	"mindpath/therapy-app/internal/domain"
	"mindpath/therapy-app/internal/service"

	"github.com/gin-gonic/gin"
)

type MoodHandler struct {
	moodService service.MoodService
}

func NewMoodHandler(moodService service.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

// --- DTOs ---

type RecordMoodRequest struct {
	Mood *int   `json:"mood" binding:"required"`
	Note string `json:"note"`
}

type MoodUploadURLRequest struct {
	Kind        domain.MediaKind `json:"kind" binding:"required"`
	ContentType string           `json:"contentType" binding:"required"`
}

type RecordMediaMoodRequest struct {
	Kind      domain.MediaKind `json:"kind" binding:"required"`
	ObjectKey string           `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// RecordMood godoc
// @Summary Log a mood
// @Tags Mood
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mood body RecordMoodRequest true "Mood from 1 to 5 with an optional note"
// @Success 201 {object} domain.MoodObservation "Logged mood"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /moods [post]
func (h *MoodHandler) RecordMood(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	var req RecordMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	mood, err := h.moodService.RecordMood(c.Request.Context(), userID, *req.Mood, req.Note)
	if err != nil {
		respondWithServiceError(c, err, "Failed to record mood.")
		return
	}
	c.JSON(http.StatusCreated, mood)
}

// GetRecentMoods godoc
// @Summary Get my recent moods
// @Description Newest first, bounded to the configured window.
// @Tags Mood
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MoodObservation "Recent moods"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /moods [get]
func (h *MoodHandler) GetRecentMoods(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	moods, err := h.moodService.RecentMoods(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve moods.")
		return
	}
	if moods == nil {
		moods = []domain.MoodObservation{}
	}
	c.JSON(http.StatusOK, moods)
}

// GetMediaUploadURL godoc
// @Summary Get a presigned URL for a voice clip or face photo
// @Tags Mood
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MoodUploadURLRequest true "Media kind and content type"
// @Success 200 {object} service.UploadURLResponse "Upload URL and object key"
// @Failure 400 {object} gin.H "Invalid kind or content type"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /moods/media/upload-url [post]
func (h *MoodHandler) GetMediaUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	var req MoodUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	resp, err := h.moodService.RequestMediaUpload(c.Request.Context(), userID, req.Kind, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUploadURLError) {
			abortWithError(c, http.StatusInternalServerError, "Could not prepare file upload.")
			return
		}
		respondWithServiceError(c, err, "Could not prepare file upload.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordMoodFromMedia godoc
// @Summary Log a mood derived from an uploaded voice clip or face photo
// @Tags Mood
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecordMediaMoodRequest true "Media kind and object key"
// @Success 201 {object} domain.MoodObservation "Logged mood"
// @Failure 400 {object} gin.H "Invalid or missing media"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Object key belongs to another user"
// @Failure 429 {object} gin.H "Generation quota exceeded"
// @Failure 502 {object} gin.H "AI generation failed"
// @Router /moods/media [post]
func (h *MoodHandler) RecordMoodFromMedia(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	var req RecordMediaMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	mood, err := h.moodService.RecordMoodFromMedia(c.Request.Context(), userID, req.Kind, req.ObjectKey)
	if err != nil {
		respondWithServiceError(c, err, "Failed to record mood from media.")
		return
	}
	c.JSON(http.StatusCreated, mood)
}
