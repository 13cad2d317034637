package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StaticHandler serves the single-page app and falls back to its entry
// document for unknown paths so client-side routing can take over
type StaticHandler struct {
	root  string
	index string
	log   zerolog.Logger
}

// NewStaticHandler creates a StaticHandler rooted at dir
func NewStaticHandler(dir, index string, log zerolog.Logger) *StaticHandler {
	if index == "" {
		index = "index.html"
	}
	return &StaticHandler{
		root:  dir,
		index: index,
		log:   log.With().Str("handler", "static").Logger(),
	}
}

// resolve maps a URL path to a regular file under the static root
func (h *StaticHandler) resolve(urlPath string) (string, bool) {
	// Cleaning against "/" drops any ".." that would climb above the root.
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		return "", false
	}
	full := filepath.Join(h.root, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", false
	}
	return full, true
}

// Index serves the entry document
func (h *StaticHandler) Index(c *gin.Context) {
	indexPath := filepath.Join(h.root, h.index)
	if info, err := os.Stat(indexPath); err != nil || info.IsDir() {
		h.log.Warn().Str("path", indexPath).Msg("Entry document missing")
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	h.serveFile(c, indexPath)
}

// serveFile writes a file already resolved under the root. http.ServeFile is
// avoided since it rejects request paths with ".." even after resolution.
func (h *StaticHandler) serveFile(c *gin.Context, name string) {
	f, err := os.Open(name)
	if err != nil {
		h.log.Warn().Err(err).Str("path", name).Msg("Failed to open static file")
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

// Fallback serves a matching static file or the entry document.
// API paths and non-GET requests never fall back.
func (h *StaticHandler) Fallback(c *gin.Context) {
	p := c.Request.URL.Path
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	if file, ok := h.resolve(p); ok {
		h.serveFile(c, file)
		return
	}
	h.Index(c)
}
