package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
)

type LinkHandler struct {
	svc service.LinkService
}

func NewLinkHandler(s service.LinkService) *LinkHandler {
	return &LinkHandler{svc: s}
}

type AddLinkReq struct {
	URL   string `json:"url" binding:"required" example:"https://grafana.example.com/d/abc"`
	Label string `json:"label" binding:"required" example:"Dashboard"`
}

// AddLink godoc
//
//	@Summary	Add link
//	@Tags		links
//	@Accept		json
//	@Produce	json
//	@Param		test_id	path	string				true	"Test ID"
//	@Param		payload	body	handler.AddLinkReq	true	"Link"
//	@Security	BearerAuth
//	@Success	201	{object}	serializer.Response{data=model.Link}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/links [post]
func (h *LinkHandler) AddLink(c *gin.Context) {
	req := AddLinkReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	l, err := h.svc.Add(c.Request.Context(), c.Param("test_id"), req.URL, req.Label)
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: l})
}

// ListLinks godoc
//
//	@Summary	List links
//	@Tags		links
//	@Produce	json
//	@Param		test_id	path	string	true	"Test ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=[]model.Link}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	links, err := h.svc.List(c.Request.Context(), c.Param("test_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: links})
}

// DeleteLink godoc
//
//	@Summary	Delete link
//	@Tags		links
//	@Param		test_id	path	string	true	"Test ID"
//	@Param		link_id	path	string	true	"Link ID"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id}/links/{link_id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("test_id"), c.Param("link_id")); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
