package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/repo"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/service"
)

type TestHandler struct {
	svc service.TestService
}

func NewTestHandler(s service.TestService) *TestHandler {
	return &TestHandler{svc: s}
}

type CreateTestReq struct {
	TestID        string           `json:"test_id" binding:"required" example:"T-0001"`
	CampaignID    string           `json:"campaign_id" binding:"required" example:"C-42"`
	SampleID      string           `json:"sample_id" binding:"required" example:"S-7"`
	EnvironmentID string           `json:"environment_id" binding:"required" example:"climate-chamber-2"`
	Operator      string           `json:"operator" binding:"required" example:"Alice"`
	Sensors       *model.Sensors   `json:"sensors" binding:"required" swaggertype:"object"`
	GrafanaURL    *string          `json:"grafana_url"`
	Status        model.TestStatus `json:"status" binding:"omitempty,test_status" enums:"draft,in_progress,finished"`
	Start         *time.Time       `json:"start"`
	End           *time.Time       `json:"end"`
}

// CreateTest godoc
//
//	@Summary		Create test
//	@Description	Register the test configuration with the Configuration API, then store the test
//	@Tags			tests
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateTestReq	true	"Test"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Test}
//	@Failure		409	{object}	serializer.Response
//	@Failure		424	{object}	serializer.Response
//	@Router			/tests [post]
func (h *TestHandler) CreateTest(c *gin.Context) {
	req := CreateTestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	t, err := h.svc.Create(c.Request.Context(), service.CreateTestInput{
		TestID:        req.TestID,
		CampaignID:    req.CampaignID,
		SampleID:      req.SampleID,
		EnvironmentID: req.EnvironmentID,
		Operator:      req.Operator,
		Sensors:       *req.Sensors,
		GrafanaURL:    req.GrafanaURL,
		Status:        req.Status,
		Start:         req.Start,
		End:           req.End,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: t})
}

type ListTestsReq struct {
	TestID        string `form:"test_id"`
	CampaignID    string `form:"campaign_id"`
	SampleID      string `form:"sample_id"`
	EnvironmentID string `form:"environment_id"`
	Operator      string `form:"operator"`
	Status        string `form:"status" binding:"omitempty,test_status"`
	Q             string `form:"q"`
}

// ListTests godoc
//
//	@Summary		List tests
//	@Description	Filter tests by exact field match; q runs a case-insensitive full-text search
//	@Tags			tests
//	@Produce		json
//	@Param			test_id			query	string	false	"Test ID"
//	@Param			campaign_id		query	string	false	"Campaign ID"
//	@Param			sample_id		query	string	false	"Sample ID"
//	@Param			environment_id	query	string	false	"Environment ID"
//	@Param			operator		query	string	false	"Operator"
//	@Param			status			query	string	false	"Status"	Enums(draft, in_progress, finished)
//	@Param			q				query	string	false	"Full-text search"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Test}
//	@Router			/tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	req := ListTestsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	tests, err := h.svc.List(c.Request.Context(), repo.TestFilter{
		TestID:        req.TestID,
		CampaignID:    req.CampaignID,
		SampleID:      req.SampleID,
		EnvironmentID: req.EnvironmentID,
		Operator:      req.Operator,
		Status:        model.TestStatus(req.Status),
		Q:             req.Q,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: tests})
}

// GetTest godoc
//
//	@Summary	Get test
//	@Tags		tests
//	@Produce	json
//	@Param		test_id	path	string	true	"Test ID"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Test}
//	@Failure	404	{object}	serializer.Response
//	@Router		/tests/{test_id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("test_id"))
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: t})
}

// UpdateTestReq merges the present keys into the test. grafana_url, start
// and end accept null to clear the stored value.
type UpdateTestReq struct {
	CampaignID    *string                   `json:"campaign_id"`
	SampleID      *string                   `json:"sample_id"`
	EnvironmentID *string                   `json:"environment_id"`
	Operator      *string                   `json:"operator"`
	Sensors       *model.Sensors            `json:"sensors" swaggertype:"object"`
	GrafanaURL    model.Nullable[string]    `json:"grafana_url" swaggertype:"string" extensions:"x-nullable"`
	Status        *model.TestStatus         `json:"status" binding:"omitempty,test_status" enums:"draft,in_progress,finished"`
	Start         model.Nullable[time.Time] `json:"start" swaggertype:"string" format:"date-time" extensions:"x-nullable"`
	End           model.Nullable[time.Time] `json:"end" swaggertype:"string" format:"date-time" extensions:"x-nullable"`
}

// UpdateTest godoc
//
//	@Summary		Update test
//	@Description	Merge the given fields into the test and mirror its content to the Configuration API
//	@Tags			tests
//	@Accept			json
//	@Produce		json
//	@Param			test_id	path	string					true	"Test ID"
//	@Param			payload	body	handler.UpdateTestReq	true	"Fields to update"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Test}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Failure		424	{object}	serializer.Response
//	@Router			/tests/{test_id} [put]
func (h *TestHandler) UpdateTest(c *gin.Context) {
	req := UpdateTestReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	t, err := h.svc.Update(c.Request.Context(), c.Param("test_id"), service.UpdateTestInput{
		CampaignID:    req.CampaignID,
		SampleID:      req.SampleID,
		EnvironmentID: req.EnvironmentID,
		Operator:      req.Operator,
		Sensors:       req.Sensors,
		GrafanaURL:    req.GrafanaURL,
		Status:        req.Status,
		Start:         req.Start,
		End:           req.End,
	})
	if err != nil {
		abortWithServiceErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: t})
}

// DeleteTest godoc
//
//	@Summary		Delete test
//	@Description	Delete the configuration, files, logbook and the test itself
//	@Tags			tests
//	@Param			test_id	path	string	true	"Test ID"
//	@Security		BearerAuth
//	@Success		204
//	@Failure		404	{object}	serializer.Response
//	@Failure		424	{object}	serializer.Response
//	@Router			/tests/{test_id} [delete]
func (h *TestHandler) DeleteTest(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("test_id")); err != nil {
		abortWithServiceErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
