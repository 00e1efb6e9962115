package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Lllllllleong/chinesepdfparser/internal/transcribe"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	engineFlag := flag.String("engine", string(transcribe.EngineText), "extraction back end: text, rows or mupdf")
	output := flag.String("o", "", "transcript path (default transcript_<engine>.txt)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-engine text|rows|mupdf] [-o file] input.pdf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	engine, err := transcribe.ParseEngine(*engineFlag)
	if err != nil {
		logger.Error("invalid engine", "error", err)
		os.Exit(2)
	}
	if *output == "" {
		*output = engine.DefaultOutputPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	transcript, err := transcribe.Transcribe(ctx, engine, flag.Arg(0))
	if err != nil {
		logger.Error("transcription failed", "input", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	fmt.Println(transcript)

	if err := os.WriteFile(*output, []byte(transcript), 0o644); err != nil {
		logger.Error("write transcript", "path", *output, "error", err)
		os.Exit(1)
	}
	logger.Info("Transcript saved.", "path", *output)
}
