package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "resume-skills/docs" // Swagger docs
	"resume-skills/internal/api"
	"resume-skills/internal/cv"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the skill extraction HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer env.Close()

		if cfg.Vocabulary.Cache {
			if _, err := env.Vocabulary.Get(ctx); err != nil {
				// Requests will retry the load; the server still starts.
				zap.L().Warn("initial vocabulary load failed", zap.Error(err))
			}
			go reloadOnHangup(ctx, env.Vocabulary)
		}

		apiSrv := api.NewAPI(env.Extractor, env.Vocabulary, env.History, cfg.Server.MaxUploadBytes)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewRouter(apiSrv),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      cfg.LLM.Timeout + 30*time.Second, // LLM call + buffer
			IdleTimeout:       120 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func reloadOnHangup(ctx context.Context, vocab *cv.VocabularyStore) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if _, err := vocab.Reload(ctx); err != nil {
				zap.L().Error("vocabulary reload failed", zap.Error(err))
			}
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
