package main

import (
	"fmt"
	"os"

	_ "taskboard/docs"
	"taskboard/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// @title           Taskboard Gateway API
// @version         1.0
// @description     Drag-and-drop gateway for project kanban boards.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	commands.SetVersion(version, commit, date)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
