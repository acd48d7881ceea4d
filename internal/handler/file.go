package handler

import (
	"CipherShare/config"
	"CipherShare/internal/dto"
	"CipherShare/internal/service"
	"CipherShare/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the non-file form fields on top of the
// payload cap when bounding the request body.
const multipartOverhead = 1 << 20

// Upload ingests one multipart-encoded file.
func Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.AppConfig.MaxUploadSize+multipartOverhead)

	fileName := c.PostForm("file_name")
	fileType := c.PostForm("file_type")
	lifetime := c.PostForm("lifetime")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Fail(c, http.StatusRequestEntityTooLarge, "File size exceeds limit")
			return
		}
		utils.Fail(c, http.StatusBadRequest, "Missing form fields")
		return
	}
	if fileName == "" || fileType == "" || lifetime == "" {
		utils.Fail(c, http.StatusBadRequest, "Missing form fields")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Missing form fields")
		return
	}
	payload, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "Failed reading file")
		return
	}

	handle, err := service.Default.Ingest(c.Request.Context(), payload, fileName, fileType, lifetime)
	if err != nil {
		log.Printf("upload failed: %v", err)
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			utils.Fail(c, http.StatusBadRequest, "Invalid lifetime")
		case errors.Is(err, service.ErrPayloadTooLarge):
			utils.Fail(c, http.StatusRequestEntityTooLarge, "File size exceeds limit")
		case errors.Is(err, service.ErrStorageUnavailable):
			utils.Fail(c, http.StatusServiceUnavailable, "Couldn't receive storage")
		case errors.Is(err, service.ErrCipher):
			utils.Fail(c, http.StatusServiceUnavailable, "Failed encrypting file")
		default:
			utils.Fail(c, http.StatusInternalServerError, "Failed saving file")
		}
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Success: true,
		UUID:    handle,
	})
}

// FileInfo returns a stored file's metadata.
func FileInfo(c *gin.Context) {
	info, err := service.Default.FetchInfo(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		failFetch(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FileInfoResponse{
		Success:       true,
		FileName:      info.FileName,
		AvailableTill: info.AvailableTill.Unix(),
	})
}

// DownloadFile returns a stored file's decrypted content.
func DownloadFile(c *gin.Context) {
	plaintext, info, err := service.Default.FetchContent(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		failFetch(c, err)
		return
	}

	fileType := info.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", utils.SanitizeHeaderFilename(info.FileName)))
	c.Data(http.StatusOK, fileType, plaintext)
}

// failFetch maps retrieval errors onto responses that never distinguish a
// missing row from a missing object.
func failFetch(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, "File not found")
	case errors.Is(err, service.ErrCipher):
		log.Printf("fetch failed: %v", err)
		utils.Fail(c, http.StatusServiceUnavailable, "Couldn't decrypt file")
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Printf("fetch failed: %v", err)
		utils.Fail(c, http.StatusServiceUnavailable, "Couldn't receive storage")
	default:
		log.Printf("fetch failed: %v", err)
		utils.Fail(c, http.StatusInternalServerError, "Internal error, please try again later")
	}
}
