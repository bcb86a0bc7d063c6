package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LapakSync/lapaksync_api/internal/middleware"
	"github.com/LapakSync/lapaksync_api/internal/service"
	"github.com/LapakSync/lapaksync_api/internal/utils"
)

// maxImageSize limits product image uploads to 8MB.
const maxImageSize = 8 << 20

// ImageHandler handles product image uploads to S3.
type ImageHandler struct {
	imageSvc *service.ImageService
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(imageSvc *service.ImageService) *ImageHandler {
	return &ImageHandler{imageSvc: imageSvc}
}

// Upload handles POST /v1/images (multipart form, field "image").
func (h *ImageHandler) Upload(c *gin.Context) {
	if h.imageSvc == nil {
		utils.Error(c, 503, "UPLOADS_DISABLED", "Image uploads are not configured")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "image file is required")
		return
	}
	if fileHeader.Size > maxImageSize {
		utils.Error(c, 400, "FILE_TOO_LARGE", "Image must be 8MB or smaller")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		utils.Error(c, 400, "INVALID_FILE_TYPE", "Only image uploads are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to read upload")
		return
	}

	client := middleware.GetClient(c)
	url, err := h.imageSvc.UploadProductImage(c.Request.Context(), client.ClientID, fileHeader.Filename, data, contentType)
	if err != nil {
		utils.Error(c, 502, "UPLOAD_FAILED", "Failed to store image")
		return
	}

	utils.Success(c, 201, "Image uploaded", gin.H{
		"url": url,
	})
}
