package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/pkg/utils/path"
)

type FileHandler struct {
	svc      service.FileService
	maxBytes int64
}

func NewFileHandler(s service.FileService, maxBytes int64) *FileHandler {
	return &FileHandler{svc: s, maxBytes: maxBytes}
}

type IssueGrantReq struct {
	Filename string `json:"filename" binding:"required" example:"run-01.csv"`
}

type IssueGrantResp struct {
	URL string `json:"url"`
}

// IssueUploadGrant godoc
//
//	@Summary		Issue upload URL
//	@Description	Return a signed, time-limited https URL that accepts one upload of the named file
//	@Tags			files
//	@Accept			json
//	@Produce		json
//	@Param			test_id	path	string					true	"Test ID"
//	@Param			payload	body	handler.IssueGrantReq	true	"File name"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.IssueGrantResp}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tests/{test_id}/files [post]
func (h *FileHandler) IssueUploadGrant(c *gin.Context) {
	req := IssueGrantReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	u, err := h.svc.IssueGrant(c.Request.Context(), c.Param("test_id"), req.Filename, c.Request.Host)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: IssueGrantResp{URL: u}})
}

type UploadFileReq struct {
	Expires   int64  `form:"expires" binding:"required"`
	Signature string `form:"signature" binding:"required"`
	Filename  string `form:"filename" binding:"required"`
}

// UploadFile godoc
//
//	@Summary		Upload file
//	@Description	Accept the bytes for a signed upload URL. The body is either raw bytes or a multipart form with a "file" part.
//	@Tags			files
//	@Accept			octet-stream,mpfd
//	@Produce		json
//	@Param			test_id		path		string	true	"Test ID"
//	@Param			expires		query		int		true	"Expiry (unix seconds)"
//	@Param			signature	query		string	true	"Signature"
//	@Param			filename	query		string	true	"File name"
//	@Param			file		formData	file	false	"File (multipart uploads)"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.File}
//	@Failure		403	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		413	{object}	serializer.Response
//	@Router			/tests/{test_id}/files/upload [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	req := UploadFileReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	body, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(serializer.CodePayloadTooLarge, "upload exceeds size limit", err))
			return
		}
		c.JSON(http.StatusBadRequest, serializer.ParamErr("unreadable upload body", err))
		return
	}

	f, err := h.svc.AcceptUpload(c.Request.Context(), service.UploadInput{
		TestID:    c.Param("test_id"),
		Expires:   req.Expires,
		Signature: req.Signature,
		Filename:  req.Filename,
		Body:      body,
		Host:      c.Request.Host,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: f})
}

func (h *FileHandler) readUpload(c *gin.Context) ([]byte, error) {
	ct, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if !strings.EqualFold(ct, "multipart/form-data") {
		return io.ReadAll(c.Request.Body)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// ListFiles godoc
//
//	@Summary	List files
//	@Tags		files
//	@Produce	json
//	@Param		test_id	path	string	true	"Test ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.File}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.svc.ListFiles(c.Request.Context(), c.Param("test_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: files})
}

// GetFile godoc
//
//	@Summary	Get file metadata
//	@Tags		files
//	@Produce	json
//	@Param		test_id	path	string	true	"Test ID"
//	@Param		file_id	path	string	true	"File ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.File}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/files/{file_id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	f, err := h.svc.GetFile(c.Request.Context(), c.Param("test_id"), c.Param("file_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: f})
}

// DownloadFile godoc
//
//	@Summary	Download file
//	@Tags		files
//	@Produce	octet-stream
//	@Param		test_id	path	string	true	"Test ID"
//	@Param		file_id	path	string	true	"File ID"
//	@Security	BearerAuth
//	@Success	200	{file}		binary
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/files/{file_id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	f, data, err := h.svc.Download(c.Request.Context(), c.Param("test_id"), c.Param("file_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+path.DispositionName(f.Name))
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// DeleteFile godoc
//
//	@Summary	Delete file
//	@Tags		files
//	@Param		test_id	path	string	true	"Test ID"
//	@Param		file_id	path	string	true	"File ID"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/files/{file_id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("test_id"), c.Param("file_id")); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
