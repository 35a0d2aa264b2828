package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/api"
	"github.com/wonny/valuescreen/internal/api/handlers"
	"github.com/wonny/valuescreen/internal/brain"
	"github.com/wonny/valuescreen/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 요청 시 스크리닝 실행
- 저장된 최근 실행 조회 (DATABASE_URL 설정 시)

Endpoints:
  GET  /health               - Health check
  GET  /api/screen           - 스크리닝 실행 (?top=15&format=json|csv|text)
  GET  /api/screen/latest    - 최근 저장된 실행 조회
  GET  /api/strategy         - 적용 중인 전략 조회

Example:
  go run ./cmd/screener api
  go run ./cmd/screener api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort    string
	apiPersist bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
	apiCmd.Flags().BoolVar(&apiPersist, "persist", false, "store every API run in PostgreSQL")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Value Screener API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Wire dependencies
	a, err := newApp(ctx, appOptions{UseDB: true, SaveDB: apiPersist})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":     a.cfg.Port,
		"env":      a.cfg.Env,
		"strategy": a.strategy.Meta.StrategyID,
		"database": a.repo != nil,
		"redis":    a.redis.Enabled(),
	}).Info("Starting API server")

	// 2. Handlers
	// nil interfaces, not typed nils, when the database is disabled
	var store handlers.RunStore
	if a.repo != nil {
		store = a.repo
	}

	var cache *redis.Cache
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, "screener")
	}

	screenHandler, err := handlers.NewScreenHandler(
		persistingRunner{app: a, persist: apiPersist},
		store,
		a.strategy,
		a.defaultTop(),
		cache,
		a.cfg.Fundamentus.CacheTTL,
		a.log,
	)
	if err != nil {
		return fmt.Errorf("screen handler: %w", err)
	}
	strategyHandler := handlers.NewStrategyHandler(a.strategy)

	var db handlers.DBChecker
	if a.db != nil {
		db = a.db
	}
	healthHandler := handlers.NewHealthHandler(db)

	// 3. Router + server
	router := api.NewRouter(screenHandler, strategyHandler, healthHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	fmt.Printf("\n✅ Listening on :%s (Ctrl+C to stop)\n", a.cfg.Port)

	if err := server.Run(ctx, 30*time.Second); err != nil {
		return err
	}

	fmt.Println("Server stopped")
	return nil
}

// persistingRunner stores API runs when --persist is set
type persistingRunner struct {
	app     *app
	persist bool
}

func (r persistingRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	config.Persist = r.persist
	return r.app.orchestrator.Run(ctx, config)
}
