package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/telecare/consult-session/config"
	ws_handler "github.com/telecare/consult-session/internal/handlers/ws-handler"
	"github.com/telecare/consult-session/internal/routers"
	chat_service "github.com/telecare/consult-session/internal/use-case/chat-case"
	"github.com/telecare/consult-session/internal/websocket"
	"github.com/telecare/consult-session/internal/worker"
	"github.com/telecare/consult-session/state"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize the application
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appState, err := state.InitAppState(ctx, stop)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	wsHub := websocket.NewHub()
	log.Info().Msg("Websocket hub initialized")

	chatService := chat_service.NewChatService(appState, wsHub)
	wsEvents := ws_handler.NewConsultEventHandler(appState, wsHub, chatService)

	authFunc := websocket.JWTWebSocketAuth(appState.JwtSecret.Public, config.Conf.App.InsecureAuth)
	wsHandler := websocket.NewWebSocketHandler(wsHub, authFunc, wsEvents)

	log.Info().Msg("Websocket handler initialized")

	r := routers.NewRouter(appState, wsHub, wsHandler)

	workerPool := worker.NewWorkerPool(appState.Redis, appState.Mongo, 5, wsHub)
	workerPool.Start(ctx)
	workerPool.StartDLQWorker(ctx)

	server := &http.Server{
		Addr:         config.Conf.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// serve the application
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(fmt.Sprintf("ListenAndServe failed: %v", err))
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Graceful shutdown failed: %v\n", err)
	} else {
		fmt.Println("Server exited gracefully.")
	}
	wsHub.Close()
	workerPool.Wait()
}
