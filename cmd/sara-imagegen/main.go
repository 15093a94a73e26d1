// Command sara-imagegen is the image generation worker. It runs as a separate
// process next to the sara server, polls the shared exchange file for pending
// prompts, generates the image variants and opens them with the desktop's
// default viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sara-labs/sara/internal/config"
	"github.com/sara-labs/sara/internal/imagegen"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	noOpen := flag.Bool("no-open", false, "do not open generated images in the default viewer")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sara-imagegen: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	entry := cfg.Providers.Image
	if entry.Name == "" || entry.APIKey == "" {
		fmt.Fprintln(os.Stderr, "sara-imagegen: providers.image with an api_key is required")
		return 1
	}

	var genOpts []imagegen.HFOption
	if entry.BaseURL != "" {
		genOpts = append(genOpts, imagegen.WithModelURL(entry.BaseURL))
	}
	gen, err := imagegen.NewHFClient(entry.APIKey, genOpts...)
	if err != nil {
		slog.Error("failed to build image client", "err", err)
		return 1
	}

	exchange := imagegen.NewExchange(cfg.Paths.ImageExchange)

	var workerOpts []imagegen.WorkerOption
	if !*noOpen {
		workerOpts = append(workerOpts, imagegen.WithOnGenerated(openImages))
	}
	worker := imagegen.NewWorker(exchange, gen, cfg.Paths.ImageDir, workerOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// openImages launches the platform's default image viewer for each path.
// Failures are logged only; the images are already on disk.
func openImages(paths []string) {
	for _, p := range paths {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", p)
		case "windows":
			cmd = exec.Command("cmd", "/c", "start", "", p)
		default:
			cmd = exec.Command("xdg-open", p)
		}
		if err := cmd.Start(); err != nil {
			slog.Warn("could not open image", "path", p, "err", err)
			continue
		}
		go func() { _ = cmd.Wait() }()
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
