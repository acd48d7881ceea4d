package router

import (
	"CipherShare/internal/handler"
	"CipherShare/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/upload", handler.Upload)
		api.GET("/file/:uuid", handler.FileInfo)
		api.GET("/file/:uuid/download", handler.DownloadFile)
	}
	return r
}
