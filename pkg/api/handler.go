// Package api exposes the library rules over HTTP with gin.
package api

import (
	"net/http"
	"strconv"
	"time"

	"bookshelf/pkg/database"
	"bookshelf/pkg/library"
	"bookshelf/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Options struct {
	MaxUploadBytes int64
	PresignExpiry  time.Duration
}

type Handler struct {
	svc            *library.Service
	files          storage.FileStore
	db             *gorm.DB
	maxUploadBytes int64
	presignExpiry  time.Duration
}

func NewHandler(svc *library.Service, files storage.FileStore, db *gorm.DB, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = 15 * time.Minute
	}
	return &Handler{
		svc:            svc,
		files:          files,
		db:             db,
		maxUploadBytes: opts.MaxUploadBytes,
		presignExpiry:  opts.PresignExpiry,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	authors := v1.Group("/authors")
	authors.GET("", h.listAuthors)
	authors.POST("", h.createAuthor)
	authors.GET("/:id", h.getAuthor)
	authors.PUT("/:id", h.updateAuthor)
	authors.PATCH("/:id", h.patchAuthor)
	authors.DELETE("/:id", h.deleteAuthor)

	books := v1.Group("/books")
	books.GET("", h.listBooks)
	books.POST("", h.createBook)
	books.GET("/:id", h.getBook)
	books.PUT("/:id", h.updateBook)
	books.PATCH("/:id", h.patchBook)
	books.DELETE("/:id", h.deleteBook)
	books.GET("/:id/download", h.downloadBook)

	userBooks := v1.Group("/user-books")
	userBooks.GET("", h.listUserBooks)
	userBooks.POST("", h.createUserBook)
	userBooks.GET("/:id", h.getUserBook)
	userBooks.PUT("/:id", h.updateUserBook)
	userBooks.PATCH("/:id", h.patchUserBook)
	userBooks.DELETE("/:id", h.deleteUserBook)

	reviews := v1.Group("/reviews")
	reviews.GET("", h.listReviews)
	reviews.POST("", h.createReview)
	reviews.GET("/:id", h.getReview)
	reviews.PUT("/:id", h.updateReview)
	reviews.PATCH("/:id", h.patchReview)
	reviews.DELETE("/:id", h.deleteReview)

	v1.POST("/files", h.uploadFile)

	r.GET("/manage/health", h.healthCheck)
}

func (h *Handler) healthCheck(c *gin.Context) {
	if err := database.Ping(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// pageFromQuery reads page and size the same lenient way for every list.
func pageFromQuery(c *gin.Context) library.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		size = 10
	}
	return library.NewPage(page, size)
}

func listResponse(c *gin.Context, page library.Page, total int64, items []gin.H) {
	c.JSON(http.StatusOK, gin.H{
		"page":          page.Number,
		"pageSize":      page.Size,
		"totalElements": total,
		"items":         items,
	})
}

// idParam parses the :id path segment. Anything but a positive integer
// matches no record.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found", "code": library.KindNotFound.String()})
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional id filter. Zero means no filter.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(c, &library.Error{
			Kind:   library.KindValidation,
			Fields: []library.FieldError{{Field: name, Message: "a valid id is required"}},
		})
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body over in. Fields absent from the body keep the
// values already in in, which is how PATCH merges onto the stored record.
func bindJSON(c *gin.Context, in interface{}) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		writeError(c, &library.Error{
			Kind:   library.KindValidation,
			Fields: []library.FieldError{{Field: "request", Message: err.Error()}},
		})
		return false
	}
	return true
}
