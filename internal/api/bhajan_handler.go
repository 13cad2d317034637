package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bhajan-portal/internal/models"
	"github.com/bhajan-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BhajanHandler handles bhajan endpoints
type BhajanHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBhajanHandler creates a new BhajanHandler
func NewBhajanHandler(services *service.Services, log zerolog.Logger) *BhajanHandler {
	return &BhajanHandler{
		services: services,
		log:      log.With().Str("handler", "bhajan").Logger(),
	}
}

// respondError maps a service error kind to its HTTP status
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = service.Internal("unexpected error", err)
	}

	switch svcErr.Kind {
	case service.KindValidation:
		log.Warn().Str("error", svcErr.Message).Str("path", c.Request.URL.Path).Msg("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": svcErr.Message})
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": svcErr.Message})
	default:
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", RequestIDFromContext(c)).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": svcErr.Error()})
	}
}

// parseID reads the :id path parameter. Non-numeric IDs cannot match any bhajan.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalForm returns a pointer to a form value, or nil when the key was not sent
func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

// List handles GET /api/bhajans?search=...&tag=...
func (h *BhajanHandler) List(c *gin.Context) {
	filter := models.ListFilter{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	}

	bhajans, err := h.services.Bhajan.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("search", filter.Search).
		Str("tag", filter.Tag).
		Int("count", len(bhajans)).
		Msg("Returning bhajans")

	c.JSON(http.StatusOK, bhajans)
}

// Get handles GET /api/bhajans/:id
func (h *BhajanHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, h.log, service.NotFound(service.MsgBhajanNotFound))
		return
	}

	bhajan, err := h.services.Bhajan.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bhajan)
}

// Create handles POST /api/bhajans
func (h *BhajanHandler) Create(c *gin.Context) {
	in := &models.CreateBhajanInput{
		Title:        c.PostForm("title"),
		Lyrics:       c.PostForm("lyrics"),
		Tags:         c.PostForm("tags"),
		UploaderName: optionalForm(c, "uploader_name"),
		YoutubeURL:   optionalForm(c, "youtube_url"),
	}

	title := []rune(in.Title)
	if len(title) > 50 {
		title = title[:50]
	}
	h.log.Info().
		Str("title", string(title)).
		Str("tags", in.Tags).
		Msg("Creating bhajan")

	bhajan, err := h.services.Bhajan.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bhajan)
}

// Update handles PUT /api/bhajans/:id
func (h *BhajanHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, h.log, service.NotFound(service.MsgBhajanNotFound))
		return
	}

	in := &models.UpdateBhajanInput{
		Title:        optionalForm(c, "title"),
		Lyrics:       optionalForm(c, "lyrics"),
		Tags:         optionalForm(c, "tags"),
		UploaderName: optionalForm(c, "uploader_name"),
		YoutubeURL:   optionalForm(c, "youtube_url"),
	}

	bhajan, err := h.services.Bhajan.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, bhajan)
}

// Delete handles DELETE /api/bhajans/:id
func (h *BhajanHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, h.log, service.NotFound(service.MsgBhajanNotFound))
		return
	}

	result, err := h.services.Bhajan.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Tags handles GET /api/tags
func (h *BhajanHandler) Tags(c *gin.Context) {
	tags, err := h.services.Bhajan.Tags(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// Stats handles GET /api/stats
func (h *BhajanHandler) Stats(c *gin.Context) {
	stats, err := h.services.Bhajan.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Int("total_bhajans", stats.TotalBhajans).Msg("Stats")
	c.JSON(http.StatusOK, stats)
}
