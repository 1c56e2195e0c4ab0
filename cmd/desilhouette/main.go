// Package main (in desilhouette-subfolder) is a one-shot CLI: removes background from one file and saves the result
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/UnendingLoop/DeSilhouette/internal/blobstore"
	appconfig "github.com/UnendingLoop/DeSilhouette/internal/config"
	"github.com/UnendingLoop/DeSilhouette/internal/console"
	"github.com/UnendingLoop/DeSilhouette/internal/model"
	"github.com/UnendingLoop/DeSilhouette/internal/mwlogger"
	"github.com/UnendingLoop/DeSilhouette/internal/remover"
	"github.com/UnendingLoop/DeSilhouette/internal/workspace"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/helpers"
	"github.com/wb-go/wbf/zlog"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	rawConfig := config.New()
	rawConfig.EnableEnv("")
	// .env для CLI необязателен
	if _, err := os.Stat("./.env"); err == nil {
		if err := rawConfig.LoadEnvFiles("./.env"); err != nil {
			log.Fatalf("Failed to load envs: %s\nExiting app...", err)
		}
	}
	cfg := appconfig.Load(rawConfig)

	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], cfg, zlog.Logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, cfg *appconfig.AppConfig, logger zlog.Zerolog) int {
	flags := pflag.NewFlagSet("desilhouette", pflag.ContinueOnError)
	mode := flags.StringP("mode", "m", string(model.ModeOriginalQuality), "processing mode: precision|originalQuality")
	out := flags.StringP("out", "o", "", "output file, defaults to the mode's download name")
	apiBase := flags.String("api", "", "API base URL, overrides API_BASE_URL")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: desilhouette [--mode precision|originalQuality] [--out file] <input>")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}

	endpoints := cfg.Endpoints
	if *apiBase != "" {
		endpoints = appconfig.Endpoints(*apiBase)
	}

	file, err := readInput(flags.Arg(0))
	if err != nil {
		logger.Error().Err(err).Str("input", flags.Arg(0)).Msg("Failed to read input")
		return exitFail
	}

	runID := helpers.CreateUUID()
	logger = logger.With().Str("run_id", runID).Logger()
	ctx = mwlogger.WithLogger(ctx, logger)

	ui := console.New(logger)
	refs := blobstore.NewMemory()
	ctrl := workspace.NewController(runID, ui, remover.NewClient(cfg.RequestTimeout), refs, endpoints, nil)
	defer ctrl.Close(ctx)

	ctrl.Init(ctx)
	if err := ctrl.SetMode(model.Mode(*mode)); err != nil {
		logger.Error().Err(err).Str("mode", *mode).Msg("Unknown mode")
		return exitUsage
	}

	if err := ctrl.HandleFileChange(ctx, file); err != nil || len(ui.Alerts()) > 0 {
		return exitFail
	}

	d, ok := ctrl.HandleDownload()
	if !ok {
		logger.Error().Err(model.ErrNoResult).Msg("Nothing to save")
		return exitFail
	}

	target := *out
	if target == "" {
		target = d.Filename
	}
	if err := saveRef(ctx, refs, d.Ref, target); err != nil {
		logger.Error().Err(err).Str("out", target).Msg("Failed to save result")
		return exitFail
	}

	logger.Info().Str("out", target).Msg("Result saved")
	return exitOK
}

func readInput(path string) (*model.ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, model.ErrEmptySource
	}

	return &model.ImageFile{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func saveRef(ctx context.Context, refs *blobstore.Memory, ref, target string) error {
	res, _, err := refs.Open(ctx, ref)
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Close()
	}()

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(f, res)
	return errors.Join(copyErr, f.Close())
}
