package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/cinerag/internal/config"
	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/handler"
	"github.com/user/cinerag/internal/logging"
	"github.com/user/cinerag/internal/middleware"
	"github.com/user/cinerag/internal/repository"
	"github.com/user/cinerag/internal/router"
	"github.com/user/cinerag/internal/service"
	"github.com/user/cinerag/internal/shell"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "cinerag",
		Short: "Semantic movie search and personalized recommendations",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// 加载环境变量
			envErr := godotenv.Load()

			cfg = config.Load()
			applyFlags(cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			if envErr != nil {
				logging.Debug().Msg(".env not found, using process environment")
			}
			if cfg.UsesDefaultSecret() {
				logging.Warn().Msg("APP_SECRET is the development default, set it in production")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return shellCmd.RunE(cmd, args)
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(_ *cobra.Command, _ []string) error {
			return serve()
		},
	}

	shellCmd = &cobra.Command{
		Use:   "shell",
		Short: "Interactive menu",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			session, closeStore, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			service.NewCheckpointService(session, cfg.CheckpointInterval).Start(ctx)
			return shell.New(session, os.Stdin, os.Stdout).Run(ctx)
		},
	}

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run the fixed demo queries",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			session, closeStore, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			return shell.Demo(ctx, session, os.Stdout)
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("port", "", "HTTP port (PORT)")
	flags.String("data", "", "JSON snapshot path (DATA_FILE)")
	flags.String("storage", "", `snapshot storage, "file" or "postgres" (STORAGE_DRIVER)`)
	flags.String("dsn", "", "postgres connection string (DATABASE_URL)")
	flags.String("provider", "", `embedding provider, "hash", "ollama" or "openai" (EMBEDDING_PROVIDER)`)
	flags.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")

	for _, name := range []string{"port", "data", "storage", "dsn", "provider", "log-level"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd, shellCmd, demoCmd)
}

// applyFlags 命令行参数覆盖环境变量
func applyFlags(cfg *config.Config) {
	overrides := map[string]*string{
		"port":      &cfg.Port,
		"data":      &cfg.DataFile,
		"storage":   &cfg.StorageDriver,
		"dsn":       &cfg.DatabaseURL,
		"provider":  &cfg.EmbeddingProvider,
		"log-level": &cfg.LogLevel,
	}
	for key, target := range overrides {
		if v := strings.TrimSpace(viper.GetString(key)); v != "" {
			*target = v
		}
	}
}

// openSession 创建向量服务与存储，加载或初始化会话
func openSession(ctx context.Context) (*service.Session, func(), error) {
	embedder, err := embedding.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("embedding provider: %w", err)
	}

	store, closeStore, err := repository.NewSnapshotStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot store: %w", err)
	}
	closer := func() {
		if err := closeStore(); err != nil {
			logging.Warn().Err(err).Msg("close store failed")
		}
	}

	session, err := service.Open(ctx, service.Options{
		Embedder: embedder,
		Store:    store,
		Weights: service.Weights{
			Query:          cfg.QueryWeight,
			Taste:          cfg.TasteWeight,
			DislikePenalty: cfg.DislikePenalty,
			GenreBoost:     cfg.GenreBoost,
		},
		ResultCacheTTL: cfg.ResultCacheTTL,
	})
	if err != nil {
		closer()
		return nil, nil, err
	}

	logging.Info().
		Str("provider", cfg.EmbeddingProvider).
		Str("storage", cfg.StorageDriver).
		Int("movies", len(session.Movies())).
		Msg("session ready")
	return session, closer, nil
}

func serve() error {
	runCtx, stopCheckpoints := context.WithCancel(context.Background())
	defer stopCheckpoints()

	session, closeStore, err := openSession(runCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	// 启动定时补写任务
	service.NewCheckpointService(session, cfg.CheckpointInterval).Start(runCtx)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	h, err := handler.NewHandler(session, cfg)
	if err != nil {
		return fmt.Errorf("init handler: %w", err)
	}
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   2 * time.Minute, // 远程向量服务可能较慢
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", "http://localhost:"+cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}
	logging.Info().Msg("shutting down")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if err := session.Save(ctx); err != nil {
		logging.Warn().Err(err).Msg("final save failed")
	}

	logging.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
