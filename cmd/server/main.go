package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"macrocode/internal/routers"
	"macrocode/internal/session"
	"macrocode/internal/store"
	"macrocode/internal/utils"
)

var (
	defaultPort      = "4001"
	defaultRedisAddr = "redis:6379"

	listenAndServe = http.ListenAndServe
	exit           = os.Exit
	exitFunc       = defaultExit
)

func defaultExit(err error) {
	log.Println("server failed:", err)
	exit(1)
}

func run(_ context.Context) error {
	logger := utils.NewLogger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, using environment variables")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = defaultRedisAddr
	}
	archive := store.NewRoomArchive(redisAddr)
	defer archive.Close()

	hub := session.NewHub()
	router := routers.New(logger, hub, archive)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	addr := ":" + port
	logger.Info("collab server listening", "addr", addr)
	return listenAndServe(addr, router)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
