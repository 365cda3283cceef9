package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/streamgate/backend/internal/config"
	"github.com/streamgate/backend/internal/db"
	"github.com/streamgate/backend/internal/handlers"
	"github.com/streamgate/backend/internal/httpserver"
	"github.com/streamgate/backend/internal/logging"
	"github.com/streamgate/backend/internal/middleware"
	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/storage"
)

// Run bootstraps the StreamGate backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	database, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(context.Background()) }()

	deps, err := buildDependencies(database, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	handler := middleware.RequestLogger(logger)(mux)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// seedVideo is the on-disk shape of a catalog seed entry. ThumbnailFile, when
// set, names a local image under <seed dir>/thumbnails that is uploaded to the
// object store in place of ThumbnailURL.
type seedVideo struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	SourceID      string `json:"source_id"`
	ThumbnailURL  string `json:"thumbnail_url"`
	ThumbnailFile string `json:"thumbnail_file"`
	IsActive      bool   `json:"is_active"`
}

func runSeed(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected seed name (e.g. dev)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	seedDir := cfg.SeedDir
	if !filepath.IsAbs(seedDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		seedDir = filepath.Join(wd, seedDir)
	}

	seedName := args[0]
	if !strings.HasSuffix(seedName, ".json") {
		seedName = fmt.Sprintf("%s_seed.json", seedName)
	}

	seedPath := filepath.Join(seedDir, seedName)
	contents, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed %s: %w", seedName, err)
	}

	var entries []seedVideo
	if err := json.Unmarshal(contents, &entries); err != nil {
		return fmt.Errorf("parse seed %s: %w", seedName, err)
	}

	ctx, span := logging.StartSpan(ctx, "seed.catalog")
	defer span.End()

	var thumbnails *storage.ThumbnailStore
	videos := make([]models.Video, 0, len(entries))
	for _, entry := range entries {
		if entry.SourceID == "" || entry.Title == "" {
			return fmt.Errorf("seed %s: every entry needs a title and source_id", seedName)
		}

		thumbnailURL := entry.ThumbnailURL
		if entry.ThumbnailFile != "" {
			if thumbnails == nil {
				thumbnails, err = storage.NewThumbnailStore(ctx, cfg.ObjectStore)
				if err != nil {
					return fmt.Errorf("seed %s references thumbnail files: %w", seedName, err)
				}
			}
			thumbnailURL, err = uploadThumbnail(ctx, thumbnails, seedDir, entry.ThumbnailFile)
			if err != nil {
				return err
			}
		}

		videos = append(videos, models.Video{
			Title:        entry.Title,
			Description:  entry.Description,
			ThumbnailURL: thumbnailURL,
			SourceID:     entry.SourceID,
			IsActive:     entry.IsActive,
		})
	}

	database, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(context.Background()) }()

	repo := repositories.NewMongoVideoRepository(database.Videos)
	if err := repo.ReplaceAll(ctx, videos); err != nil {
		return fmt.Errorf("apply seed %s: %w", seedName, err)
	}

	logging.FromContext(ctx).Info("seed applied", "seed", seedName, "videos", len(videos))
	return nil
}

func uploadThumbnail(ctx context.Context, thumbnails *storage.ThumbnailStore, seedDir, name string) (string, error) {
	path := filepath.Join(seedDir, "thumbnails", filepath.Base(name))
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open thumbnail %s: %w", name, err)
	}
	defer file.Close()

	url, err := thumbnails.Upload(ctx, "thumbnails/"+filepath.Base(name), contentTypeFor(name), file)
	if err != nil {
		return "", err
	}
	return url, nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
