package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viaflix/performance-dashboard-api/infrastructure/repository"
	"github.com/viaflix/performance-dashboard-api/internal/api"
	"github.com/viaflix/performance-dashboard-api/internal/config"
	"github.com/viaflix/performance-dashboard-api/internal/scheduler"
	"github.com/viaflix/performance-dashboard-api/internal/usecases/authenticating"
	"github.com/viaflix/performance-dashboard-api/internal/usecases/processing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo, err := repository.NewFileUserRepository(cfg.Storage.UsersFile)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir o arquivo de usuários")
	}
	logrus.WithField("users_file", cfg.Storage.UsersFile).Info("Arquivo de usuários carregado com sucesso")

	authenticator := authenticating.NewService(userRepo, cfg)

	uploadRepo := repository.NewMemoryUploadRepository()

	frameCache := processing.NewFrameCache(time.Duration(cfg.Processing.FrameCacheTTLMinutes) * time.Minute)
	processingService := processing.NewService(cfg, frameCache)

	// Agendador de limpeza do cache de frames
	cacheCleanupService := scheduler.NewFrameCacheCleanupService(frameCache, cfg)
	if err := cacheCleanupService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de limpeza do cache de frames")
	} else {
		logrus.Info("Agendador de limpeza do cache de frames iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		authenticator,
		uploadRepo,
		processingService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}
