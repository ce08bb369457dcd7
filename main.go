package main

import (
	"os"

	"curse-catalog/cmd"
	"curse-catalog/config"
	"curse-catalog/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = config.DefaultLogFile
	}

	logger.InitLogger(logFile) // Initialize the logger first
	defer logger.Sync()        // Ensure logs are flushed on exit
	cmd.Execute()
}
