package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lllllllleong/chinesepdfparser/internal/app"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
	"github.com/Lllllllleong/chinesepdfparser/internal/services"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	config, input, output, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Error("invalid arguments", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *config, input, output); err != nil {
		logger.Error("processing failed", "input", input, "error", err)
		os.Exit(1)
	}
}

// parseArgs layers the command-line flags over the environment defaults and
// validates the result once.
func parseArgs(args []string) (*services.ParserConfig, string, string, error) {
	config, err := services.ParserConfigFromEnv()
	if err != nil {
		return nil, "", "", err
	}

	fs := flag.NewFlagSet("pdf-parser", flag.ContinueOnError)
	output := fs.String("o", "output.json", "path of the JSON report; the transcript is written next to it as .txt")
	layoutFlag := fs.String("layout", string(config.Layout), "text direction of the document: horizontal or vertical")
	fs.IntVar(&config.DPI, "dpi", config.DPI, "resolution used to render pages for OCR")
	fs.IntVar(&config.Workers, "workers", config.Workers, "number of pages recognized concurrently")
	fs.StringVar(&config.OCREngine, "ocr-engine", config.OCREngine, "OCR engine: tesseract or gemini")
	fs.StringVar(&config.ReportTitle, "title", config.ReportTitle, "title written at the top of the transcript")
	fs.StringVar(&config.TessdataPrefix, "tessdata", config.TessdataPrefix, "directory containing Tesseract trained data")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: pdf-parser [flags] input.pdf\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, "", "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", "", fmt.Errorf("expected exactly one input file, got %d", fs.NArg())
	}

	if config.Layout, err = models.ParseLayout(*layoutFlag); err != nil {
		return nil, "", "", err
	}
	if err := config.Validate(); err != nil {
		return nil, "", "", err
	}
	if services.TranscriptPath(*output) == *output {
		return nil, "", "", fmt.Errorf("output %q would be overwritten by its transcript; use a .json path", *output)
	}
	return config, fs.Arg(0), *output, nil
}

func run(ctx context.Context, config services.ParserConfig, input, output string) error {
	builder, err := app.NewBuilder(ctx, config)
	if err != nil {
		return err
	}
	defer builder.Close()

	parser, err := builder.Parser(config.Layout)
	if err != nil {
		return err
	}
	report, err := parser.HybridParse(ctx, input)
	if err != nil {
		return err
	}
	txtPath, err := services.ExportReport(report, output, config.ReportTitle, parser.Cleaner())
	if err != nil {
		return err
	}

	slog.Info("Processing complete.",
		"pages", report.Metadata.PageCount,
		"ocrPages", report.Metadata.OCRPageCount,
		"report", output,
		"transcript", txtPath,
	)
	return nil
}
