package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/ton-certs/cert-service/service/app"
	"github.com/ton-certs/cert-service/service/common"
	"github.com/ton-certs/cert-service/service/config"
	"github.com/ton-certs/cert-service/service/http"
	"github.com/ton-certs/cert-service/service/tonchain"
)

const version = "0.1.0"

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
)

func init() {
	log.SetLevel(log.InfoLevel)
}

func main() {
	var (
		printVersion bool
		envFilePath  string
	)

	// If we should just print the version number and exit
	flag.BoolVar(&printVersion, "version", false, "if true, print version and exit")

	// Allow configuration of envfile path
	// If not set, ParseConfig will not try to load variables to environment from a file
	flag.StringVar(&envFilePath, "envfile", "", "envfile path")

	flag.Parse()

	if printVersion {
		fmt.Printf("v%s build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}

	opts := &config.ConfigOptions{EnvFilePath: envFilePath}
	cfg, err := config.ParseConfig(opts)
	if err != nil {
		panic(err)
	}

	if err := runServer(cfg); err != nil {
		panic(err)
	}

	os.Exit(0)
}

func runServer(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config not provided")
	}

	logger := log.New()

	logger.Printf("Starting server (v%s)...\n", version)

	// Chain gateway client
	chainClient := tonchain.NewHTTPClient(cfg.ChainGatewayURL, cfg.ChainGatewayKey)

	// Database
	db, err := common.NewGormDB(cfg)
	if err != nil {
		return err
	}
	defer common.CloseGormDB(db)

	// Migrate app database
	if err := app.Migrate(db); err != nil {
		return err
	}

	// Local fallback cache
	cache, err := app.NewLocalCache(cfg.CacheDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Println(err)
		}
	}()

	// Application
	a, err := app.New(cfg, db, cache, chainClient)
	if err != nil {
		return err
	}
	defer a.Close()

	// HTTP server
	server := http.NewServer(cfg, nil, a)

	server.ListenAndServe()

	return nil
}
