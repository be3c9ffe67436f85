package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/rm-hull/alphablend/internal"
	"github.com/rm-hull/alphablend/internal/routes"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

type ApiServerOptions struct {
	RootDir  string
	Port     int
	Debug    bool
	Manifest string
	Schedule string
	PoolSize int
}

func ApiServer(opts ApiServerOptions) {
	internal.StartupDiagnostics()

	var sched gocron.Scheduler
	if opts.Manifest != "" {
		if err := os.MkdirAll(opts.RootDir, 0755); err != nil {
			log.Fatalf("failed to create root folder: %v", err)
		}
		var err error
		sched, err = internal.NewScheduler(opts.Manifest, opts.RootDir, opts.Schedule, opts.PoolSize, newRemoteClient())
		if err != nil {
			log.Fatal(err)
		}
	}

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
	)

	if opts.Debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err := healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{})
	if err != nil {
		log.Fatalf("failed to initialize healthcheck: %v", err)
	}

	r.POST("/v1/process", routes.Process)
	r.Static("/v1/output", opts.RootDir)

	addr := fmt.Sprintf(":%d", opts.Port)
	log.Printf("Starting HTTP API Server on port %d...", opts.Port)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP API Server failed to start on port %d: %v", opts.Port, err)
	}

	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			log.Fatalf("failed to shutdown scheduler: %v", err)
		}
	}
}
