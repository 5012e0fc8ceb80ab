package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/de-tools/posture-exporter/pkg/metrics"
	"github.com/de-tools/posture-exporter/pkg/server"
	"github.com/de-tools/posture-exporter/pkg/services/collector"
	"github.com/de-tools/posture-exporter/pkg/services/config"
	"github.com/de-tools/posture-exporter/pkg/services/posture"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "posture-exporter",
		Short: "Export Sysdig security posture compliance data as Prometheus metrics",
		RunE:  runExporter,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml",
		"Path to the YAML configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runExporter(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Settings.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", cfg.Settings.LogLevel, err)
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	ctx, cancel := context.WithCancel(logger.WithContext(cmd.Context()))
	defer cancel()

	client, err := posture.NewClient(cfg.Posture)
	if err != nil {
		return fmt.Errorf("failed to create posture client: %w", err)
	}

	registry := metrics.NewRegistry()
	inst := metrics.NewInstrumentation(registry.Registerer())
	mapper := posture.Mapper{NoDataThreshold: cfg.NoDataThreshold()}

	postureCollector := collector.NewCollector(client, mapper, registry, inst, cfg.Posture.CollectionInterval)
	go postureCollector.Run(ctx)

	logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	logger.Info().
		Str("region_url", cfg.Posture.RegionURL).
		Str("endpoint", cfg.Posture.PostureAPIEndpoint).
		Dur("interval", cfg.Posture.CollectionInterval).
		Int("no_data_threshold_hours", cfg.Posture.NoDataThresholdHours).
		Msg("collecting posture data")

	webAPI := server.NewWebAPI(server.Config{
		Addr:        fmt.Sprintf(":%d", cfg.Settings.HTTPPort),
		MetricsPath: cfg.Settings.MetricsPath,
		Dependencies: server.Dependencies{
			Registry: registry,
			Logger:   logger,
		},
	})

	return webAPI.Start()
}
