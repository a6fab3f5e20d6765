package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cedric1982/fsd/internal/base"
	"github.com/cedric1982/fsd/internal/database"
	"github.com/cedric1982/fsd/internal/fsd_server"
	"github.com/cedric1982/fsd/internal/http_server"
	"github.com/cedric1982/fsd/internal/interfaces"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/store"
)

func recoverFromError() {
	if r := recover(); r != nil {
		fmt.Printf("It looks like there are some serious errors, the details are as follows: %v\n", r)
		os.Exit(1)
	}
}

func main() {
	flag.Parse()

	defer recoverFromError()

	logger := base.NewLogger()
	logger.Init(*global.DebugMode)

	logger.Info("Booting server")

	cleaner := base.NewCleaner(logger)
	cleaner.Init()

	configManager := base.NewManager(logger)
	config := configManager.Config()

	defer cleaner.Clean()

	shutdownCallback, certOperation, err := database.ConnectDatabase(logger, config, *global.DebugMode)
	if err != nil {
		logger.FatalF("Error occurred while initializing certificate database, details: %v", err)
		os.Exit(1)
	}
	cleaner.Add(shutdownCallback)

	applicationContent := interfaces.NewApplicationContent(configManager, cleaner, logger, certOperation)

	mirror := store.NewStoreService(logger, config.Store)
	node := fsd_server.NewNode(applicationContent, mirror)

	go node.Run(context.Background())

	if config.Server.HttpServer.Enabled {
		go http_server.StartHttpServer(applicationContent, node)
	}

	fsd_server.StartFSDServer(applicationContent, node)
}
