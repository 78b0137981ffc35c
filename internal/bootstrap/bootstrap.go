package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/kirillkom/shipment-docs-tracker/internal/adapters/http"
	mcpadapter "github.com/kirillkom/shipment-docs-tracker/internal/adapters/mcp"
	"github.com/kirillkom/shipment-docs-tracker/internal/config"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/usecase"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/extractor/surrogate"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/llm/mock"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/queue/nats"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/repository/memory"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/resilience"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/seed"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/sheets/xlsx"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/shipment-docs-tracker/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Store     *memory.SessionStore
	Uploads   *usecase.SubmitUploadUseCase
	Dashboard *usecase.DashboardUseCase
	Metrics   *metrics.HTTPServerMetrics
	MCP       http.Handler

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if _, err := httpadapter.LoadOpenAPI(ctx); err != nil {
		return nil, err
	}

	shipments, err := seed.Load(cfg.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	store, err := memory.NewSessionStore(shipments)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	executor := resilience.NewExecutor(cfg.ResilienceConfig()).OnStateChange(httpMetrics.RecordBreakerState)

	uploads := usecase.NewSubmitUploadUseCase(
		store,
		surrogate.NewExtractor(),
		NewAnalyzer(cfg, executor),
		usecase.UploadOptions{
			Uploader:          cfg.DefaultUploader,
			StorageBaseURL:    cfg.StorageBaseURL,
			AnalysisTimeout:   time.Duration(cfg.AnalysisTimeoutSeconds) * time.Second,
			MaxFileSizeBytes:  cfg.MaxFileSizeBytes(),
			MaxInFlight:       cfg.MaxInFlightUploads,
			LogFailedAttempts: cfg.LogFailedUploads,
		},
	).WithObserver(httpMetrics)

	if cfg.ArchivePath != "" {
		archive, err := localfs.New(cfg.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		uploads.WithArchive(archive)
	}

	closeFn := func() {}
	if cfg.NATSURL != "" {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			ClientName:         "shipdocs-api",
		})
		if err != nil {
			return nil, fmt.Errorf("init upload events: %w", err)
		}
		uploads.WithEventPublisher(queue)
		closeFn = queue.Close
	} else {
		slog.Info("upload_events_disabled", "reason", "NATS_URL is empty")
	}

	dashboard := usecase.NewDashboardUseCase(store, xlsx.NewRenderer())

	app := &App{
		Config:    cfg,
		Store:     store,
		Uploads:   uploads,
		Dashboard: dashboard,
		Metrics:   httpMetrics,
		closeFn:   closeFn,
	}
	if cfg.MCPEnabled {
		handler, err := mcpadapter.NewHandler(mcpadapter.Config{ServerName: "shipdocs"}, dashboard, httpMetrics)
		if err != nil {
			closeFn()
			return nil, fmt.Errorf("init mcp: %w", err)
		}
		app.MCP = handler
	}
	return app, nil
}

// NewAnalyzer picks the analysis backend. Only bootstrap knows which one runs.
func NewAnalyzer(cfg config.Config, executor *resilience.Executor) ports.Analyzer {
	switch backend := cfg.Analyzer(); backend {
	case "ollama":
		slog.Info("analyzer_selected", "backend", backend, "url", cfg.OllamaURL, "model", cfg.OllamaGenModel)
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, time.Duration(cfg.OllamaTimeoutSeconds)*time.Second)
		if executor != nil {
			client.WithResilience(executor)
		}
		return ollama.NewAnalyzer(client)
	default:
		slog.Info("analyzer_selected", "backend", backend)
		return mock.NewAnalyzer(time.Duration(cfg.MockAnalyzerDelayMS) * time.Millisecond)
	}
}

func (a *App) Handler() http.Handler {
	router := httpadapter.NewRouter(a.Config, a.Uploads, a.Dashboard).WithMetrics(a.Metrics)
	if a.MCP != nil {
		router.WithMCP(a.MCP)
	}
	return router.Handler()
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// Worker consumes upload events and appends them to the ledger workbook.
type Worker struct {
	Config config.Config

	Events  ports.UploadEventSubscriber
	Record  *usecase.RecordUploadUseCase
	Metrics *metrics.WorkerMetrics

	closeFn func()
}

func NewWorker(_ context.Context, cfg config.Config) (*Worker, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("NATS_URL is required for the worker")
	}
	ledger, err := xlsx.NewLedger(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("init ledger: %w", err)
	}
	workerMetrics := metrics.NewWorkerMetrics("worker")

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ClientName: "shipdocs-worker"})
	if err != nil {
		return nil, fmt.Errorf("init upload events: %w", err)
	}

	return &Worker{
		Config:  cfg,
		Events:  queue,
		Record:  usecase.NewRecordUploadUseCase(ledger).WithObserver(workerMetrics),
		Metrics: workerMetrics,
		closeFn: queue.Close,
	}, nil
}

func (w *Worker) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}
