package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sccsite/internal/content"
	"github.com/sccsite/internal/crud"
	"github.com/sccsite/internal/media"
	"github.com/sccsite/internal/service"
	"github.com/sccsite/internal/storage"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// wantsJSON 判断请求方是否期望 JSON 响应
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(c.ContentType(), "application/json")
}

// respondContentError 将内容层错误映射为状态码与提示
func respondContentError(c *gin.Context, err error, label, action string) {
	var verr *crud.ValidationError
	switch {
	case errors.As(err, &verr):
		message := "请填写必填字段：" + strings.Join(verr.Fields, ", ")
		if verr.Message != "" && len(verr.Fields) == 1 && verr.Fields[0] == "email" {
			message = "邮箱格式不正确"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": message, "fields": verr.Fields})
	case errors.Is(err, crud.ErrBusy):
		respondError(c, http.StatusConflict, "正在保存，请勿重复提交")
	case errors.Is(err, content.ErrNotFound):
		respondError(c, http.StatusNotFound, label+"不存在")
	case errors.Is(err, service.ErrGalleryImageNotFound):
		respondError(c, http.StatusNotFound, "相册中没有该图片")
	case errors.Is(err, storage.ErrFileTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "图片超过大小限制")
	case errors.Is(err, storage.ErrEmptyFile):
		respondError(c, http.StatusBadRequest, "上传的图片为空")
	case errors.Is(err, media.ErrNotImage):
		respondError(c, http.StatusBadRequest, "只允许上传图片文件")
	default:
		respondError(c, http.StatusInternalServerError, action+label+"失败")
	}
}

type openedFile struct {
	file   storage.File
	closer io.Closer
}

// formFile 打开表单中的单个文件，字段缺失时返回 nil
func formFile(c *gin.Context, field string) (*storage.File, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	opened, err := openFileHeader(header)
	if err != nil {
		return nil, func() {}, err
	}
	return &opened.file, func() { opened.closer.Close() }, nil
}

// formFiles 打开表单中同名的多个文件
func formFiles(c *gin.Context, field string) ([]storage.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, func() {}, nil
	}

	var opened []openedFile
	closeAll := func() {
		for _, f := range opened {
			f.closer.Close()
		}
	}
	for _, header := range form.File[field] {
		f, err := openFileHeader(header)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
	}

	files := make([]storage.File, 0, len(opened))
	for _, f := range opened {
		files = append(files, f.file)
	}
	return files, closeAll, nil
}

func openFileHeader(header *multipart.FileHeader) (openedFile, error) {
	f, err := header.Open()
	if err != nil {
		return openedFile{}, err
	}
	return openedFile{file: storage.File{Name: header.Filename, Body: f}, closer: f}, nil
}
