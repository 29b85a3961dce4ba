package main

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/bookden/bookden"
)

func main() {
	e := echo.New()
	e.Logger.SetLevel(log.INFO)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	cfg, err := bookden.LoadConfig()
	if err != nil {
		e.Logger.Fatalf("failed to load config: %v", err)
	}

	db, err := bookden.ConnectDB(cfg)
	if err != nil {
		e.Logger.Fatalf("failed to connect db: %v", err)
	}
	db.SetMaxOpenConns(10)
	defer db.Close()

	if err := bookden.MigrateUp(db.DB); err != nil {
		e.Logger.Fatalf("failed to migrate db: %v", err)
	}

	tokens, err := bookden.NewTokenService(cfg)
	if err != nil {
		e.Logger.Fatalf("failed to initialize token service: %v", err)
	}

	server := bookden.NewServer(db, tokens)
	server.RegisterRoutes(e)

	e.Logger.Infof("starting bookden server on :%s ...", cfg.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", cfg.Port)))
}
