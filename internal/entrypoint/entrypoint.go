package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/audit"
	"github.com/mrlokans/phrasebook/internal/auth"
	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/database"
	auditrepo "github.com/mrlokans/phrasebook/internal/database/audit"
	"github.com/mrlokans/phrasebook/internal/database/devices"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	http_controllers "github.com/mrlokans/phrasebook/internal/http"
	"github.com/mrlokans/phrasebook/internal/reconcile"
	"github.com/mrlokans/phrasebook/internal/scheduler"
	"github.com/mrlokans/phrasebook/internal/services"
	"github.com/mrlokans/phrasebook/internal/similarity"
	"github.com/mrlokans/phrasebook/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.Global.ReadTimeout,
		WriteTimeout: cfg.Global.WriteTimeout,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill is SIGTERM; SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before tearing down what they depend on
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// NewAnalyzer returns the LLM-backed analyzer when an API key is configured
// and the no-op analyzer otherwise.
func NewAnalyzer(cfg config.Analyzer) analysis.Analyzer {
	if cfg.APIKey == "" {
		log.Printf("[ANALYSIS] ANALYZER_API_KEY is not set, entries will get the fallback analysis")
		return analysis.Disabled{}
	}
	client := analysis.NewChatClient(analysis.ChatConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
		MinInterval: cfg.MinInterval,
	})
	log.Printf("[ANALYSIS] Using model %s at %s", cfg.Model, cfg.BaseURL)
	return analysis.NewLLMAnalyzer(client)
}

// EnsureIndex rebuilds the similarity index when it is empty but the store
// is not, e.g. after the snapshot file was lost.
func EnsureIndex(repo *entries.Repository, index *similarity.Index, svc *services.EntryService) {
	if index.Len() > 0 {
		return
	}
	count, err := repo.CountEntries()
	if err != nil {
		log.Printf("[INDEX] Failed to count entries: %v", err)
		return
	}
	if count == 0 {
		return
	}
	log.Printf("[INDEX] Index is empty but %d entries are stored, rebuilding", count)
	if _, err := svc.RebuildIndex(); err != nil {
		log.Printf("[INDEX] Rebuild failed: %v", err)
	}
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Phrasebook v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	entryRepo := entries.NewRepository(db.DB)
	deviceRepo := devices.NewRepository(db.DB)

	index, err := similarity.Open(cfg.Index.Path)
	if err != nil {
		log.Fatalf("Failed to open similarity index: %v", err)
	}

	embedder := embedding.NewHashEmbedder(cfg.Index.Dimension)
	entryService := services.NewEntryService(entryRepo, index, embedder, NewAnalyzer(cfg.Analyzer))
	EnsureIndex(entryRepo, index, entryService)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	if cfg.Audit.SyncEnvelopes {
		auditService.SetEnvelopeAuditor(audit.NewAuditor(cfg.Audit.Dir))
		log.Printf("[AUDIT] Sync envelopes are saved to %s", cfg.Audit.Dir)
	}
	entryService.SetEventLogger(auditService)

	reconciler := reconcile.NewReconciler(reconcile.NewRepositoryStore(entryRepo), entryService, auditService)

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterQueues(entryService, entryService, auditService)
		entryService.SetReanalysisScheduler(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		log.Printf("[TASK] Task queue disabled, failed analyses will not be retried")
	}

	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Scheduler.Enabled && taskClient != nil {
		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Scheduler, cfg.Audit.RetentionDays)
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	} else if cfg.Scheduler.Enabled {
		log.Printf("[SCHEDULER] Maintenance jobs need the task queue, skipping")
	}

	authService := auth.NewService(deviceRepo, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
	if cfg.Auth.Mode == config.AuthModeToken {
		log.Printf("Authentication mode: token (register devices with '%s register-device')", os.Args[0])
	} else {
		log.Printf("Authentication mode: none (device id taken from the %s header)", auth.HeaderDeviceID)
	}

	routerCfg := http_controllers.RouterConfig{
		Entries:            entryService,
		Syncer:             reconciler,
		Database:           db,
		Index:              entryService,
		AuditEvents:        auditService,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		AuthMiddleware:     authMiddleware,
		EnableHSTS:         cfg.Auth.Mode == config.AuthModeToken,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authMiddleware.Stop()
		auditService.Flush()
	}

	Serve(router, cfg, onShutdown)
}
