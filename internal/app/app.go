// Package app wires services into the HTTP router.
package app

import (
	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/handlers"
	"filesmanager/backend/internal/middleware"
	"filesmanager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Gate  *access.Gate
	App   *services.AppService
	Users *services.UserService
	Files *services.FileService
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging())

	app := handlers.NewAppHandler(d.App)
	users := handlers.NewUserHandler(d.Users)
	files := handlers.NewFileHandler(d.Files)

	router.GET("/status", app.GetStatus)
	router.GET("/stats", app.GetStats)

	router.POST("/users", users.Register)
	router.GET("/connect", users.Connect)

	router.GET("/files/:id/data", middleware.OptionalAuth(d.Gate), files.GetData)

	protected := router.Group("/").Use(middleware.RequireAuth(d.Gate))
	{
		protected.GET("/disconnect", users.Disconnect)
		protected.GET("/users/me", users.Me)

		protected.POST("/files", files.Upload)
		protected.GET("/files", files.ListFiles)
		protected.GET("/files/:id", files.GetFile)
		protected.PUT("/files/:id/publish", files.Publish)
		protected.PUT("/files/:id/unpublish", files.Unpublish)
	}

	return router
}
