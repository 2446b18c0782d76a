package main

import (
	"log"

	_ "github.com/dhima/mysql-crud/docs" // Import generated docs
	"github.com/dhima/mysql-crud/internal/api"
	"github.com/dhima/mysql-crud/pkg/config"
)

// @title MySQL CRUD API
// @version 1.0
// @description Generic CRUD access to MySQL tables with bound parameters, input/output sanitization and change events on Kafka.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	srv := api.NewServer()
	if err := srv.Serve(); err != nil {
		log.Fatalf("api server stopped: %v", err)
	}
}
