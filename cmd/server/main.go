package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hnpham/stockpile/internal/adapter/handler"
	"github.com/hnpham/stockpile/internal/adapter/storage"
	"github.com/hnpham/stockpile/internal/core/service"
	"github.com/hnpham/stockpile/internal/port"
)

var rootCmd = &cobra.Command{
	Use:   "stockpile",
	Short: "Emergency-supply inventory service",
	Long:  "Serve the emergency-supply inventory HTTP API. Flags can also be set via environment variables with the STOCKPILE_ prefix (e.g. STOCKPILE_REDIS_ADDR).",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().String("listen", ":8080", "address the HTTP API listens on")
	rootCmd.PersistentFlags().String("backend", "redis", "collection storage backend: redis or mysql")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.PersistentFlags().String("mysql-dsn", "root:root@tcp(localhost:3306)/stockpile?parseTime=true", "MySQL DSN (backend=mysql)")
	rootCmd.PersistentFlags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown drain timeout")
}

func main() {
	// .env files are optional developer convenience, missing files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix("STOCKPILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	store := service.NewCollectionStore(repo)
	items := service.NewItemService(store)
	migration := service.NewMigrationService(store)

	httpHandler := handler.NewHTTPHandler(items)
	migrateHandler := handler.NewMigrateHandler(migration)

	mux := http.NewServeMux()
	mux.HandleFunc("/items", httpHandler.Items)
	mux.HandleFunc("/migrate", migrateHandler.Migrate)
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/metrics", httpHandler.Metrics)

	httpServer := &http.Server{
		Addr:    viper.GetString("listen"),
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), viper.GetDuration("shutdown-timeout"))
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	return nil
}

// openRepository connects the configured storage backend and returns it with
// its cleanup function.
func openRepository(ctx context.Context) (port.CollectionRepository, func(), error) {
	switch backend := viper.GetString("backend"); backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr: viper.GetString("redis-addr"),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Println("connected to redis")
		return storage.NewRedisAdapter(rdb), func() { rdb.Close() }, nil

	case "mysql":
		db, err := sql.Open("mysql", viper.GetString("mysql-dsn"))
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("connect mysql: %w", err)
		}
		log.Println("connected to mysql")
		return storage.NewMySQLAdapter(db), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q (expected redis or mysql)", backend)
	}
}
