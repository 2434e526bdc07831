package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mzd555/criteria-poc/pkg/apihelpers"
	"github.com/mzd555/criteria-poc/services/criteria-api/apihandlers"
)

var conf Config

func main() {

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.APIKeys,
	)
	v1APIHandlers.AddCriteriaAPI(v1Root)

	if conf.GinDebugMode {
		apihelpers.WriteRoutesToFile(router, "criteria-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Criteria API", slog.String("port", conf.Port))
	err := router.Run(":" + conf.Port)
	if err != nil {
		slog.Error("Exited Criteria API", slog.String("error", err.Error()))
		return
	}
}
