package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-admin/services"
	"travel-admin/utils"
)

// multipart framing overhead allowed on top of the file size limit
const formOverhead = 1 << 20

type UploadController struct {
	Uploads *services.UploadService
}

func NewUploadController(uploads *services.UploadService) *UploadController {
	return &UploadController{Uploads: uploads}
}

// POST /upload
func (uc *UploadController) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.Uploads.MaxBytes()+formOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			utils.RespondError(c, uc.Uploads.TooLarge())
			return
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			fh = nil
		default:
			utils.RespondError(c, utils.BadRequest(services.MsgNoFile))
			return
		}
	}

	url, err := uc.Uploads.Upload(c.Request.Context(), fh)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
