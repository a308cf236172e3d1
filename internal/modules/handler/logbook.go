package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
)

type LogbookHandler struct {
	svc service.LogbookService
}

func NewLogbookHandler(s service.LogbookService) *LogbookHandler {
	return &LogbookHandler{svc: s}
}

type CreateLogbookReq struct {
	Operator  string     `json:"operator" binding:"required" example:"Alice"`
	Content   string     `json:"content" binding:"required" example:"Valve V2 opened"`
	SensorIDs []string   `json:"sensor_ids"`
	Timestamp *time.Time `json:"timestamp"` // Optional, defaults to now
}

// CreateLogbookEntry godoc
//
//	@Summary		Create logbook entry
//	@Description	Store the entry and mirror it as a time-series point
//	@Tags			logbook
//	@Accept			json
//	@Produce		json
//	@Param			test_id	path	string						true	"Test ID"
//	@Param			payload	body	handler.CreateLogbookReq	true	"Entry"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.LogbookEntry}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tests/{test_id}/logbook [post]
func (h *LogbookHandler) CreateLogbookEntry(c *gin.Context) {
	req := CreateLogbookReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	e, err := h.svc.Create(c.Request.Context(), c.Param("test_id"), service.CreateLogbookInput{
		Operator:  req.Operator,
		Content:   req.Content,
		SensorIDs: req.SensorIDs,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: e})
}

// ListLogbookEntries godoc
//
//	@Summary	List logbook entries
//	@Tags		logbook
//	@Produce	json
//	@Param		test_id	path	string	true	"Test ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.LogbookEntry}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/logbook [get]
func (h *LogbookHandler) ListLogbookEntries(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Param("test_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: entries})
}

// GetLogbookEntry godoc
//
//	@Summary	Get logbook entry
//	@Tags		logbook
//	@Produce	json
//	@Param		test_id		path	string	true	"Test ID"
//	@Param		entry_id	path	string	true	"Entry ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.LogbookEntry}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/logbook/{entry_id} [get]
func (h *LogbookHandler) GetLogbookEntry(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), c.Param("test_id"), c.Param("entry_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: e})
}

type UpdateLogbookReq struct {
	Operator  *string    `json:"operator"`
	Content   *string    `json:"content"`
	SensorIDs *[]string  `json:"sensor_ids"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateLogbookEntry godoc
//
//	@Summary		Update logbook entry
//	@Description	Merge the given fields. A new timestamp moves the time-series point.
//	@Tags			logbook
//	@Accept			json
//	@Produce		json
//	@Param			test_id		path	string						true	"Test ID"
//	@Param			entry_id	path	string						true	"Entry ID"
//	@Param			payload		body	handler.UpdateLogbookReq	true	"Fields to update"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.LogbookEntry}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/tests/{test_id}/logbook/{entry_id} [put]
func (h *LogbookHandler) UpdateLogbookEntry(c *gin.Context) {
	req := UpdateLogbookReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	e, err := h.svc.Update(c.Request.Context(), c.Param("test_id"), c.Param("entry_id"), service.UpdateLogbookInput{
		Operator:  req.Operator,
		Content:   req.Content,
		SensorIDs: req.SensorIDs,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: e})
}

// DeleteLogbookEntry godoc
//
//	@Summary	Delete logbook entry
//	@Tags		logbook
//	@Param		test_id		path	string	true	"Test ID"
//	@Param		entry_id	path	string	true	"Entry ID"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/logbook/{entry_id} [delete]
func (h *LogbookHandler) DeleteLogbookEntry(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("test_id"), c.Param("entry_id")); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResyncLogbookEntry godoc
//
//	@Summary		Resync logbook point
//	@Description	Rewrite the entry's time-series point from the stored document
//	@Tags			logbook
//	@Produce		json
//	@Param			test_id		path	string	true	"Test ID"
//	@Param			entry_id	path	string	true	"Entry ID"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.LogbookEntry}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tests/{test_id}/logbook/{entry_id}/resync [post]
func (h *LogbookHandler) ResyncLogbookEntry(c *gin.Context) {
	e, err := h.svc.Resync(c.Request.Context(), c.Param("test_id"), c.Param("entry_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: e})
}
