package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/app"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/config"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/logger"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		outDir    = flag.String("out", "", "directory for the analysis artifacts (default from config)")
		noExplain = flag.Bool("no-explain", false, "skip saliency maps")
		summary   = flag.Bool("json", false, "print the JSON summary instead of the text report")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("expected one image path, got %d", flag.NArg())
	}
	imagePath := flag.Arg(0)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Storage.Enabled = true
	if *outDir != "" {
		cfg.Storage.OutputDir = *outDir
	}
	if *noExplain {
		cfg.Inference.Explain = false
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := context.Background()
	service, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := service.Close(); err != nil {
			log.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	result, err := service.Analysis.Analyze(ctx, &usecase.AnalyzeInput{
		Filename: imagePath,
		Data:     data,
	})
	if err != nil {
		return err
	}

	if *summary {
		fmt.Println(result.Summary)
	} else {
		fmt.Println(result.Report)
	}
	fmt.Fprintf(os.Stderr, "disease: %s (status %d)\n", result.Disease, result.StatusCode)
	if result.OutputDir != "" {
		fmt.Fprintf(os.Stderr, "artifacts: %s\n", result.OutputDir)
	}
	return nil
}
