package main

import (
	"log"

	_ "pebble/docs"
	"pebble/internal/config"
	"pebble/internal/server"
)

// @title           Pebble API
// @version         1.0
// @description     Projects, issues and kanban boards.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
