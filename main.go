package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"crisisflow/analysis"
	"crisisflow/config"
	"crisisflow/loader"
	"crisisflow/logger"
	"crisisflow/registry"
	"crisisflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Crisisflow.Name,
		"version": cfg.Crisisflow.Version,
	}).Info("starting crisisflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Storage.S3.Enabled {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.Crisisflow.Name, cfg.Logging.DashboardName)
	}
	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	reg, err := registry.Load(cfg.Registry.CountriesPath, cfg.Registry.EventsPath)
	if err != nil {
		log.WithError(err).Error("Failed to load country and event registry")
		os.Exit(1)
	}
	log.WithComponent("main").WithFields(logger.Fields{
		"countries": len(reg.Countries()),
		"events":    len(reg.AllEvents()),
	}).Info("registry loaded")

	ads, err := loader.LoadAds(cfg.Inputs.AdsPath)
	if err != nil {
		log.WithError(err).Error("Failed to load advertisements")
		os.Exit(1)
	}

	rates, err := loader.LoadRates(cfg.Inputs.RatesPath, reg)
	if err != nil {
		log.WithError(err).Error("Failed to load exchange rates")
		os.Exit(1)
	}

	series, err := loader.LoadPrices(cfg.Inputs.PricesPath, cfg.Inputs.Asset)
	if err != nil {
		log.WithError(err).Error("Failed to load price history")
		os.Exit(1)
	}

	pipeline := analysis.NewPipeline(cfg.Analysis, reg)
	report := pipeline.Run(ads, rates, series)

	reportWriter, err := writer.NewReportWriter(cfg)
	if err != nil {
		log.WithError(err).Error("Failed to create report writer")
		os.Exit(1)
	}

	artifacts, err := reportWriter.Write(ctx, report)
	if err != nil {
		log.WithError(err).Error("Failed to persist run report")
		os.Exit(1)
	}

	log.WithComponent("main").WithFields(logger.Fields{
		"run_id":    report.RunID,
		"countries": len(report.Countries),
		"omissions": len(report.Omissions),
		"artifacts": artifacts,
	}).Info("analysis run completed")

	logger.LogFinalReport(ctx, log)
	log.Info("crisisflow stopped")
}
