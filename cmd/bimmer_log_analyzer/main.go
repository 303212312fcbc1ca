package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"github.com/user/bimmer_log_analyzer_go/internal/config"
	"github.com/user/bimmer_log_analyzer_go/internal/logging"
	"github.com/user/bimmer_log_analyzer_go/internal/pipeline"
)

//go:embed all:frontend/public
var assets embed.FS

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Error loading configuration: ", err)
	}
	logger, err := logging.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer logger.Sync()

	app := NewApp(cfg, pipeline.NewRunner(cfg, logger.Named("pipeline")), logger)

	err = wails.Run(&options.App{
		Title:         appTitle,
		Width:         550,
		Height:        350,
		DisableResize: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 240, G: 240, B: 240, A: 255},
		OnStartup:        app.Startup,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		logger.Fatal("Error running Wails app", zap.Error(err))
	}
}
