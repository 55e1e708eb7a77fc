package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"bookshelf/pkg/library"
	"bookshelf/pkg/logging"
	"bookshelf/pkg/storage"

	"github.com/gin-gonic/gin"
)

func fileError(c *gin.Context, message string) {
	writeError(c, &library.Error{
		Kind:   library.KindValidation,
		Fields: []library.FieldError{{Field: "file", Message: message}},
	})
}

// uploadFile stores a PDF sent as multipart field "file" and returns the
// key to put in a book's file field.
func (h *Handler) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fileError(c, "file is too large")
			return
		}
		fileError(c, "this field is required")
		return
	}
	if !strings.EqualFold(path.Ext(header.Filename), ".pdf") {
		fileError(c, "file extension is not allowed, allowed extensions are: pdf")
		return
	}
	f, err := header.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, err)
		return
	}
	info, err := storage.InspectPDF(data)
	if err != nil {
		fileError(c, "upload a valid pdf document")
		return
	}

	key := storage.NewObjectKey(header.Filename)
	if err := h.files.Put(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), storage.ContentTypePDF); err != nil {
		writeError(c, err)
		return
	}
	logging.FromContext(c.Request.Context()).Info("book file stored", "key", key, "pages", info.Pages, "bytes", len(data))
	c.JSON(http.StatusCreated, gin.H{
		"file":  key,
		"pages": info.Pages,
	})
}

// downloadBook hands out a temporary link to the book document.
func (h *Handler) downloadBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	book, err := h.svc.GetBook(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if book.File == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "book has no file",
			"code":    library.KindNotFound.String(),
			"errors":  []library.FieldError{{Field: "file", Message: "book has no file"}},
		})
		return
	}
	exists, err := h.files.Exists(ctx, book.File)
	if err != nil {
		writeError(c, err)
		return
	}
	if !exists {
		writeError(c, &library.Error{
			Kind:   library.KindStorage,
			Fields: []library.FieldError{{Field: "file", Message: library.MsgFileMissing}},
		})
		return
	}
	url, err := h.files.PresignGet(ctx, book.File, h.presignExpiry)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"expires_in": int(h.presignExpiry.Seconds()),
	})
}
