package router

import (
	"ImageHub/internal/handler"
	"ImageHub/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	// Public locator route; no auth, views are counted here.
	r.GET("/media/:filename", handler.ServeMedia)

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.GET("/activate", handler.Activate)
		api.POST("/login", handler.Login)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		image := auth.Group("/image")
		{
			image.POST("/upload", handler.Upload)
			image.GET("/list", handler.Gallery)
			image.GET("/stats", handler.Stats)
			image.POST("/delete", handler.Delete)
			image.GET("/download/:fileID", handler.Download)
			image.GET("/link/:fileID", handler.ShareLink)
		}
	}
	return r
}
