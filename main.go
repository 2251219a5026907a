package main

import (
	"chartmood/cmd/handlers"
	"chartmood/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
