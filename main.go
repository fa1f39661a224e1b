package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-snake/api"
	gameapi "github.com/beka-birhanu/vinom-snake/api/game"
	api_i "github.com/beka-birhanu/vinom-snake/api/i"
	"github.com/beka-birhanu/vinom-snake/api/identity"
	leaderboardapi "github.com/beka-birhanu/vinom-snake/api/leaderboard"
	toolsapi "github.com/beka-birhanu/vinom-snake/api/tools"
	"github.com/beka-birhanu/vinom-snake/config"
	"github.com/beka-birhanu/vinom-snake/game"
	idt "github.com/beka-birhanu/vinom-snake/identity"
	logger "github.com/beka-birhanu/vinom-snake/infrastruture/log"
	"github.com/beka-birhanu/vinom-snake/infrastruture/repo"
	"github.com/beka-birhanu/vinom-snake/infrastruture/token"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	startupTimeout    = 30 * time.Second
	playersCollection = "players"
	adminKeyCost      = 12
)

// Global variables for dependencies
var (
	envs                  config.Config
	appLogger             i.Logger
	redisClient           *redis.Client
	sqliteDB              *sql.DB
	mongoClient           *mongo.Client
	localBoard            i.LocalLeaderboard
	recordRepo            i.GameRecordRepo
	remoteBoard           i.RemoteLeaderboard
	leaderboardService    *service.Leaderboard
	gameSessionManager    *service.GameSessionManager
	jwtTokenizer          i.Tokenizer
	authService           i.Authenticator
	adminKey              *idt.AdminKey
	authController        api_i.Controller
	gameController        api_i.Controller
	leaderboardController api_i.Controller
	toolsController       api_i.Controller
	router                *api.Router
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initLocalBoard(ctx context.Context) {
	if envs.RedisAddr == "" {
		localBoard = repo.NewMemoryLeaderboard()
		appLogger.Warning("REDIS_ADDR not set, local leaderboard is kept in memory")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	localBoard = repo.NewRedisLeaderboard(redisClient, "")
	appLogger.Info("Connected to Redis")
}

func initRecordRepo() {
	var err error
	sqliteDB, err = repo.InitSQLite(envs.SQLitePath)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Opening SQLite database: %v", err))
		os.Exit(1)
	}
	recordRepo = repo.NewGameRecordRepo(sqliteDB)
	appLogger.Info(fmt.Sprintf("Game records stored in %s", envs.SQLitePath))
}

func initMongo(ctx context.Context) {
	if envs.DBHost == "" {
		appLogger.Warning("DB_HOST not set, online leaderboard disabled")
		return
	}

	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", envs.DBUser, envs.DBPassword, envs.DBHost, envs.DBPort)
	if envs.DBUser == "" {
		uri = fmt.Sprintf("mongodb://%s:%v", envs.DBHost, envs.DBPort)
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}

	players := repo.NewPlayerRepo(mongoClient, envs.DBName, playersCollection)
	if err := players.EnsureIndexes(ctx); err != nil {
		appLogger.Warning(fmt.Sprintf("Creating player indexes: %v", err))
	}
	remoteBoard = players
	appLogger.Info("Connected to MongoDB")
}

func initLeaderboardService() {
	var err error
	leaderboardService, err = service.NewLeaderboard(localBoard, recordRepo, remoteBoard,
		newLogger("LEADERBOARD", config.ColorPurple),
		&service.LeaderboardOptions{SyncBuffer: envs.SyncBuffer},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard service initialized")
}

func initSessionManager() {
	engineConfig := game.DefaultConfig()
	engineConfig.GridSize = envs.GridSize
	engineConfig.BaseInterval = envs.BaseInterval
	engineConfig.MinInterval = envs.MinInterval
	engineConfig.IntervalStep = envs.IntervalStep

	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		EngineConfig: engineConfig,
		Recorder:     leaderboardService,
		Logger:       newLogger("SESSION-MANAGER", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	var err error
	jwtTokenizer, err = token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating JWT tokenizer: %v", err))
		os.Exit(1)
	}
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuth(leaderboardService, jwtTokenizer, newLogger("AUTH", config.ColorBlue), 0)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initAdminKey() {
	if envs.AdminKey == "" {
		appLogger.Warning("ADMIN_KEY not set, admin routes disabled")
		return
	}

	var err error
	adminKey, err = idt.NewAdminKey(envs.AdminKey, adminKeyCost)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Rejecting ADMIN_KEY: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Admin key loaded")
}

func initControllers() {
	var err error
	authController = identity.NewIdentityServer(authService, leaderboardService)
	gameController, err = gameapi.NewGameController(gameSessionManager, leaderboardService, newLogger("GAME-API", config.ColorMagenta))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}
	leaderboardController = leaderboardapi.NewLeaderboardController(leaderboardService)
	toolsController = toolsapi.NewToolsController()
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", envs.HostIP, envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, gameController, leaderboardController, toolsController},
		AuthorizationMiddleware: identity.Authoriz(t),
		AdminMiddleware:         identity.AdminOnly(adminKey),
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	envs = config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	initLocalBoard(startCtx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	initRecordRepo()
	defer sqliteDB.Close()
	initMongo(startCtx)
	if mongoClient != nil {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}

	initLeaderboardService()
	go leaderboardService.Run(ctx)
	defer leaderboardService.Close()

	initSessionManager()
	defer gameSessionManager.StopAll()

	initJWTTokenizer()
	initAuthService()
	initAdminKey()
	initControllers()
	initRouter(jwtTokenizer)

	// Run HTTP server until interrupted
	if err := router.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Server stopped")
}
