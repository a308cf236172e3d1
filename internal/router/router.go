package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quixio/test-rig-demo-test-rig-simulator/docs"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/infra/metrics"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/middleware"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/handler"
	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	ServiceName    string
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	Auth           *middleware.Auth
	TestHandler    *handler.TestHandler
	FileHandler    *handler.FileHandler
	LogbookHandler *handler.LogbookHandler
	LinkHandler    *handler.LinkHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestLogger(d.Log),
		middleware.CORS(),
		otelgin.Middleware(d.ServiceName),
		middleware.Metrics(d.Metrics),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, serializer.Response{Msg: "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	read := d.Auth.Require(middleware.PermissionRead)
	update := d.Auth.Require(middleware.PermissionUpdate)

	v1 := r.Group("/api/v1")
	{
		tests := v1.Group("/tests")
		{
			tests.POST("", update, d.TestHandler.CreateTest)
			tests.GET("", read, d.TestHandler.ListTests)
			tests.GET("/:test_id", read, d.TestHandler.GetTest)
			tests.PUT("/:test_id", update, d.TestHandler.UpdateTest)
			tests.DELETE("/:test_id", update, d.TestHandler.DeleteTest)

			files := tests.Group("/:test_id/files")
			{
				files.POST("", update, d.FileHandler.IssueUploadGrant)
				files.POST("/upload", update, d.FileHandler.UploadFile)
				files.GET("", read, d.FileHandler.ListFiles)
				files.GET("/:file_id", read, d.FileHandler.GetFile)
				files.GET("/:file_id/download", read, d.FileHandler.DownloadFile)
				files.DELETE("/:file_id", update, d.FileHandler.DeleteFile)
			}

			logbook := tests.Group("/:test_id/logbook")
			{
				logbook.POST("", update, d.LogbookHandler.CreateLogbookEntry)
				logbook.GET("", read, d.LogbookHandler.ListLogbookEntries)
				logbook.GET("/:entry_id", read, d.LogbookHandler.GetLogbookEntry)
				logbook.PUT("/:entry_id", update, d.LogbookHandler.UpdateLogbookEntry)
				logbook.DELETE("/:entry_id", update, d.LogbookHandler.DeleteLogbookEntry)
				logbook.POST("/:entry_id/resync", update, d.LogbookHandler.ResyncLogbookEntry)
			}

			links := tests.Group("/:test_id/links")
			{
				links.POST("", update, d.LinkHandler.AddLink)
				links.GET("", read, d.LinkHandler.ListLinks)
				links.DELETE("/:link_id", update, d.LinkHandler.DeleteLink)
			}
		}
	}

	return r
}
