package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/azhao/scanpay/internal/auth"
	"github.com/azhao/scanpay/internal/parser"
	"github.com/azhao/scanpay/internal/server"
	"github.com/azhao/scanpay/internal/service"
	"github.com/azhao/scanpay/internal/storage/sqlite"
	"github.com/azhao/scanpay/pkg/logging"
)

func main() {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	fs := ff.NewFlagSet("scanpay")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "./data/scanpay.db", "SQLite database path")
		tokenSecret = fs.StringLong("token-secret", "", "HMAC secret for session tokens (random if empty)")
		tokenTTL    = fs.IntLong("token-ttl-hours", 24, "Session token lifetime in hours")
		origins     = fs.StringLong("cors-origins", "", "Comma-separated allowed CORS origins (empty allows all)")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("SCANPAY"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logging.Setup()

	secret := *tokenSecret
	if secret == "" {
		// Ephemeral secret: issued tokens stop working on restart.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			slog.Error("Failed to generate token secret", "error", err)
			os.Exit(1)
		}
		secret = hex.EncodeToString(buf)
		slog.Warn("No token secret configured, using a random one")
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", *dbPath)

	tokens := auth.NewTokenManager(secret, time.Duration(*tokenTTL)*time.Hour)
	sessions := service.NewSessionManager()
	svc := service.NewReceiptService(parser.New(), store, sessions, nil)

	var allowedOrigins []string
	if *origins != "" {
		allowedOrigins = strings.Split(*origins, ",")
	}

	engine := server.New(svc, tokens, allowedOrigins)

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, engine); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
