// Package static serves the built frontend assets.
package static

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config holds configuration for the asset file server
type Config struct {
	// Root is the root directory to serve files from
	Root string

	// Prefix is the URL prefix to strip (e.g., "/static")
	Prefix string

	// MaxAge is the cache duration in seconds
	MaxAge int

	// IndexFile is the default file to serve for directories
	IndexFile string

	etagCache *sync.Map
}

// DefaultConfig returns default asset server configuration
func DefaultConfig(root string) *Config {
	return &Config{
		Root:      root,
		Prefix:    "/static",
		MaxAge:    31536000, // 1 year
		IndexFile: "index.html",
		etagCache: &sync.Map{},
	}
}

// FileServer creates a caching static file server. Responses carry
// Cache-Control, ETag and Last-Modified headers and honor the
// corresponding conditional request headers.
func FileServer(config *Config) http.Handler {
	if config.etagCache == nil {
		config.etagCache = &sync.Map{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		urlPath := r.URL.Path
		if config.Prefix != "" {
			urlPath = strings.TrimPrefix(urlPath, config.Prefix)
		}
		urlPath = path.Clean(urlPath)

		// Prevent directory traversal
		cleanPath := filepath.Clean(urlPath)
		if strings.Contains(cleanPath, "..") {
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}

		filePath := filepath.Join(config.Root, cleanPath)

		// Verify resolved path doesn't escape the root directory
		absRoot, err := filepath.Abs(config.Root)
		if err != nil {
			http.Error(w, "Server error", http.StatusInternalServerError)
			return
		}
		absFile, err := filepath.Abs(filePath)
		if err != nil {
			http.Error(w, "Invalid path", http.StatusBadRequest)
			return
		}
		if !strings.HasPrefix(absFile, absRoot) {
			http.Error(w, "Invalid path", http.StatusForbidden)
			return
		}

		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if info.IsDir() {
			indexPath := filepath.Join(filePath, config.IndexFile)
			indexInfo, err := os.Stat(indexPath)
			if err != nil || indexInfo.IsDir() {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			filePath = indexPath
			info = indexInfo
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", config.MaxAge))
		w.Header().Set("Content-Type", detectContentType(filePath))

		etag := getETag(filePath, info, config.etagCache)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
		if ims := r.Header.Get("If-Modified-Since"); ims != "" {
			if t, err := time.Parse(http.TimeFormat, ims); err == nil {
				if !info.ModTime().After(t) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}

		http.ServeFile(w, r, filePath)
	})
}

// NewFileServer creates a static file server with default configuration
func NewFileServer(root, prefix string) http.Handler {
	config := DefaultConfig(root)
	config.Prefix = prefix
	return FileServer(config)
}

// detectContentType detects the content type from file extension
func detectContentType(filePath string) string {
	contentTypes := map[string]string{
		".html": "text/html; charset=utf-8",
		".css":  "text/css; charset=utf-8",
		".js":   "application/javascript; charset=utf-8",
		".ts":   "application/typescript; charset=utf-8",
		".json": "application/json; charset=utf-8",
		".txt":  "text/plain; charset=utf-8",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".gif":  "image/gif",
		".svg":  "image/svg+xml",
		".webp": "image/webp",
		".ico":  "image/x-icon",
		".woff2": "font/woff2",
	}

	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filePath))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// getETag returns a weak ETag derived from file size and mtime.
func getETag(filePath string, info os.FileInfo, cache *sync.Map) string {
	cacheKey := fmt.Sprintf("%s:%d", filePath, info.ModTime().Unix())
	if etag, ok := cache.Load(cacheKey); ok {
		return etag.(string)
	}

	etag := fmt.Sprintf(`"W/%x-%x"`, info.Size(), info.ModTime().Unix())
	cache.Store(cacheKey, etag)
	return etag
}
