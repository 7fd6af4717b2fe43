package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amirulhaziq/inspectable-backend/config"
	"github.com/amirulhaziq/inspectable-backend/database"
	"github.com/amirulhaziq/inspectable-backend/routes"
)

func main() {
	cfg := config.Load()

	if err := database.RunMigrations(cfg); err != nil {
		panic(fmt.Sprintf("❌ Migrations failed: %v", err))
	}
	db := database.Connect(cfg)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		panic(fmt.Sprintf("❌ Failed to create upload directory: %v", err))
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Setup(router, cfg, db)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	log.Printf("📁 Upload directory: %s", cfg.UploadDir)
	if err := router.Run(":" + cfg.Port); err != nil {
		panic(fmt.Sprintf("Failed to start server: %v", err))
	}
}
