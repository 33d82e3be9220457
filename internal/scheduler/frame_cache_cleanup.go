package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/viaflix/performance-dashboard-api/internal/config"
	"github.com/viaflix/performance-dashboard-api/internal/usecases/processing"
)

// FrameCacheCleanupConfig representa a configuração do agendador de limpeza do cache de frames
type FrameCacheCleanupConfig struct {
	CronSchedule   string
	CleanupEnabled bool
}

// FrameCacheCleanupService gerencia o agendamento da limpeza de frames expirados
type FrameCacheCleanupService struct {
	scheduler          *gocron.Scheduler
	config             FrameCacheCleanupConfig
	cache              *processing.FrameCache
	cleanupRunning     bool
	cleanupMutex       sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
}

// NewFrameCacheCleanupService cria uma nova instância do serviço de limpeza do cache
func NewFrameCacheCleanupService(cache *processing.FrameCache, appConfig *config.Config) *FrameCacheCleanupService {
	cleanupConfig := FrameCacheCleanupConfig{
		CronSchedule:   appConfig.CacheCleanup.CronSchedule,
		CleanupEnabled: appConfig.CacheCleanup.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":   cleanupConfig.CronSchedule,
		"cleanup_enabled": cleanupConfig.CleanupEnabled,
	}).Info("Configuração do agendador de limpeza do cache de frames carregada")

	return &FrameCacheCleanupService{
		scheduler:      scheduler,
		config:         cleanupConfig,
		cache:          cache,
		cleanupRunning: false,
	}
}

// Start inicia o agendador
func (s *FrameCacheCleanupService) Start(ctx context.Context) error {
	if !s.config.CleanupEnabled {
		logrus.Info("Limpeza do cache de frames desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de limpeza do cache de frames")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.cleanupExpiredFrames()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza do cache de frames: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de limpeza do cache de frames")
		s.scheduler.Stop()
	}()

	return nil
}

// cleanupExpiredFrames remove do cache os frames com TTL vencido
func (s *FrameCacheCleanupService) cleanupExpiredFrames() {
	s.cleanupMutex.Lock()
	if s.cleanupRunning {
		s.cleanupMutex.Unlock()
		logrus.Info("Limpeza do cache de frames já em andamento, ignorando")
		return
	}
	s.cleanupRunning = true
	s.lastRunStartedAt = time.Now()
	s.cleanupMutex.Unlock()

	removed := s.cache.Sweep()

	s.cleanupMutex.Lock()
	s.lastRunCompletedAt = time.Now()
	s.cleanupRunning = false
	s.cleanupMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"removed":   removed,
		"remaining": s.cache.Len(),
		"duration":  s.lastRunCompletedAt.Sub(s.lastRunStartedAt).String(),
	}).Info("Limpeza do cache de frames concluída")
}
