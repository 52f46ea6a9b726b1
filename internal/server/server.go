// Package server отдает диалоговый агент и журнал запусков по HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobAgent/internal/config"
	"jobAgent/internal/database"
	"jobAgent/internal/logger"
)

// Replier - граница агента для внешних интерфейсов.
type Replier interface {
	Reply(ctx context.Context, text string) string
}

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]database.CrawlRun, error)
}

type Server struct {
	cfg  config.Server
	log  *logger.Zap
	chat Replier
	runs RunLister

	// chatMu: сообщения обрабатываются по одному, следующее ждет завершения предыдущего
	chatMu sync.Mutex
}

// New создает сервер. runs может быть nil, если журнал в БД выключен.
func New(cfg config.Server, log *logger.Zap, chat Replier, runs RunLister) *Server {
	return &Server{
		cfg:  cfg,
		log:  log,
		chat: chat,
		runs: runs,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) reply(ctx context.Context, text string) string {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()
	return s.chat.Reply(ctx, text)
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("HTTP",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/api/chat", func(c *gin.Context) {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}

		c.JSON(http.StatusOK, chatResponse{Reply: s.reply(c.Request.Context(), req.Message)})
	})

	r.GET("/api/runs", func(c *gin.Context) {
		if s.runs == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run journal is disabled"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
			return
		}

		runs, err := s.runs.ListRuns(c.Request.Context(), limit)
		if err != nil {
			s.log.Error("db list runs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, runs)
	})

	return r
}

// Run обслуживает запросы до отмены ctx, затем корректно завершает сервер.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Сервер запущен", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Остановка сервера")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
