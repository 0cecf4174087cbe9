// launching the server, vision runtime, kafka, redis
package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"

	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"face-enhancer/config"
	"face-enhancer/internal/database"
	"face-enhancer/internal/pkg/cache"
	"face-enhancer/internal/pkg/kafka"
	"face-enhancer/internal/pkg/pipeline"
	"face-enhancer/internal/pkg/storage"
	"face-enhancer/internal/pkg/vision"
	"face-enhancer/internal/service"
	"face-enhancer/internal/transport"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	capability, cascades := vision.Probe(cfg.Enhancer.Engine, cfg.Enhancer.CascadeDir)
	logrus.Infof("vision runtime: %s", capability.Note)

	chain := pipeline.NewChain(capability, cascades, cfg.Enhancer)
	resultCache := newResultCache(cfg.Redis)

	fileStorage := storage.NewFileStorage(cfg.Storage.BasePath)
	jobRepo := database.NewJobRepository(fileStorage)
	kafkaProducer := kafka.NewProducer(cfg.Kafka)

	enhanceService := service.NewEnhanceService(chain, resultCache, capability)
	batchService := service.NewBatchService(jobRepo, kafkaProducer, cfg.Kafka.Topic)
	handler := transport.NewEnhanceHandler(enhanceService, batchService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, cfg.Enhancer.WebDir)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if err := kafkaProducer.Close(); err != nil {
		logrus.Errorf("error occured on closing kafka producer: %s", err.Error())
	}
	if cascades != nil {
		cascades.Close()
	}
}

// newResultCache возвращает nil, когда кэш выключен или redis недоступен;
// сервис одинаково работает в обоих случаях.
func newResultCache(cfg config.RedisConfig) *cache.ResultCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.Warnf("redis unavailable, result cache disabled: %v", err)
		return nil
	}

	logrus.Infof("redis result cache enabled at %s:%d", cfg.Host, cfg.Port)
	return cache.NewResultCache(client, cfg.TTL)
}
