package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LordEaster/Say4Me/internal/handler"
	"github.com/LordEaster/Say4Me/internal/hub"
	"github.com/LordEaster/Say4Me/internal/moderation"
	"github.com/LordEaster/Say4Me/internal/persistence/mongodb"
	"github.com/LordEaster/Say4Me/internal/server"
	env "github.com/Netflix/go-env"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type App struct {
	logger   *zap.Logger
	settings Settings

	mongoClient     *mongo.Client
	store           *mongodb.Store
	broadcastHub    *hub.InMemoryHub
	restServer      *server.RESTServer
	websocketServer *server.WebSocketServer
}

func NewApp(logger *zap.Logger, settings Settings) (*App, error) {
	mongoClient, err := mongo.Connect(options.Client().ApplyURI(settings.MongoDBURI))
	if err != nil {
		return nil, err
	}

	store := mongodb.NewStore(mongoClient)

	gate := moderation.NewOllamaGate(
		logger,
		settings.OllamaAPIURL,
		settings.LLMModel,
		time.Duration(settings.ModerationTimeoutSeconds)*time.Second,
	)

	broadcastHub := hub.NewInMemoryHub(logger)

	submitHandler := handler.NewSubmitHandler(logger, settings.BodyMaxLength, gate, store, broadcastHub)
	listHandler := handler.NewListHandler(store)
	openHandler := handler.NewOpenHandler(store)
	feedHandler := handler.NewFeedHandler(store, broadcastHub)

	submitLimiter := rate.NewLimiter(rate.Limit(settings.SubmitRatePerSecond), settings.SubmitBurst)

	restServer := server.NewRESTServer(
		logger,
		submitHandler,
		listHandler,
		openHandler,
		submitLimiter,
	)

	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		EnableCompression: true,
		// Viewers are anonymous; the board is readable from any origin.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	websocketServer := server.NewWebSocketServer(
		logger,
		websocketUpgrader,
		feedHandler,
	)

	return &App{
		logger,
		settings,
		mongoClient,
		store,
		broadcastHub,
		restServer,
		websocketServer,
	}, nil
}

func (a *App) setup(ctx context.Context) error {
	setupCtx, setupCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer setupCtxCancel()

	err := a.store.Setup(setupCtx)
	if err != nil {
		return err
	}

	a.startHttpServer(ctx)

	a.broadcastHub.Close()

	disconnectCtx, disconnectCtxCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer disconnectCtxCancel()

	return a.mongoClient.Disconnect(disconnectCtx)
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter().
		PathPrefix(a.settings.BasePath).
		Subrouter()

	a.restServer.Register(router)
	a.websocketServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func main() {
	ctx := context.Background()

	godotenv.Load()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to parse settings from environment", zap.Error(err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	app, err := NewApp(logger, settings)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}

	err = app.setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
}
