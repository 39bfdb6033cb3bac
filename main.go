// go_ytcode turns YouTube programming tutorials into runnable code projects.
//
// Exposes MCP tools over HTTP (extract_code, extraction_status,
// extraction_list, extraction_archive) and a REST API on a second port for
// browser clients that submit, poll and download extractions.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcode/internal/codeserver"
	"github.com/anatolykoptev/go_ytcode/internal/config"
	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/codegen"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
	apiPort = env.Str("API_PORT", "8893")
)

func main() {
	ctx := context.Background()
	initEngine()
	defer engine.CloseCache()

	st, err := openStore(ctx)
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		return
	}
	defer st.Close()

	gen, err := codegen.NewClient(ctx, config.Codegen())
	if err != nil {
		slog.Error("codegen init failed", slog.Any("error", err))
		return
	}

	pipeline := extraction.NewPipeline(extraction.DefaultStages(), gen)
	svc := extraction.NewService(config.Service(), st, pipeline, openNotifier())

	api := &http.Server{
		Addr:              ":" + apiPort,
		Handler:           codeserver.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("rest api listening", slog.String("port", apiPort))
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("rest api failed", slog.Any("error", err))
		}
	}()

	slog.Info("starting go_ytcode",
		slog.String("mcp_port", mcpPort),
		slog.String("api_port", apiPort),
		slog.Any("providers", gen.Providers()),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytcode",
		Version: version,
	}, nil)
	codeserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 4))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytcode",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		slog.Warn("rest api shutdown", slog.Any("error", err))
	}
	if err := svc.Close(shutdownCtx); err != nil {
		slog.Warn("extraction shutdown", slog.Any("error", err))
	}
}

func initEngine() {
	c := config.Engine()
	engine.Init(c)

	if err := engine.InitCache(config.Cache(), c.CacheTTL, c.CacheMaxBytes); err != nil {
		slog.Warn("redis cache unavailable, using memory only", slog.Any("error", err))
	}
}

// openStore picks Postgres when DATABASE_URL is set, SQLite otherwise.
func openStore(ctx context.Context) (store.Store, error) {
	sc := config.Store()
	if sc.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, sc.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("postgres store ready")
		return pg, nil
	}
	lite, err := store.OpenSQLite(sc.SQLitePath)
	if err != nil {
		return nil, err
	}
	slog.Info("sqlite store ready", slog.String("path", sc.SQLitePath))
	return lite, nil
}

func openNotifier() extraction.Notifier {
	url, prefix := config.NATS()
	if url == "" {
		return extraction.NopNotifier{}
	}
	n, err := extraction.ConnectNATS(url, prefix)
	if err != nil {
		slog.Warn("nats unavailable, notifications disabled", slog.Any("error", err))
		return extraction.NopNotifier{}
	}
	return n
}
