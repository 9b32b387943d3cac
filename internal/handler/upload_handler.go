package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/media"
	"github.com/sccsite/internal/storage"
)

// PreviewUpload 将上传的图片转为 data URL 供表单预览，不写入存储
func (a *API) PreviewUpload(c *gin.Context) {
	file, closeFile, err := formFile(c, "image")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传的图片"})
		return
	}
	defer closeFile()

	data, err := io.ReadAll(io.LimitReader(file.Body, a.maxUpload+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	if int64(len(data)) > a.maxUpload {
		respondContentError(c, storage.ErrFileTooLarge, "图片", "上传")
		return
	}
	if len(data) == 0 {
		respondContentError(c, storage.ErrEmptyFile, "图片", "上传")
		return
	}

	contentType, _, err := media.DetectImage(data)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) {
			respondContentError(c, err, "图片", "上传")
			return
		}
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}

	width, height, _ := media.Dimensions(data)
	c.JSON(http.StatusOK, gin.H{
		"data_url":     media.DataURL(data),
		"content_type": contentType,
		"size":         len(data),
		"width":        width,
		"height":       height,
	})
}
