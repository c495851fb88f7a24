package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"doodleserver/auth"            //再接続チケット(JWT)
	"doodleserver/database"        //設定の読み込み、PostgreSQLとRedisの初期化
	"doodleserver/game"            //ルームとラウンドの進行エンジン
	"doodleserver/game/broadcast"  //イベントの配信(WebSocket, NATS)
	"doodleserver/game/connection" //WebSocket接続の管理
	"doodleserver/game/moderation" //チャットのフィルタ
	"doodleserver/game/ratelimit"  //アクションのレート制限
	"doodleserver/game/words"      //お題の単語
	"doodleserver/handlers"        //HTTPハンドラー(公開API・管理API)
	"doodleserver/middlewares"     //レート制限・管理API認証
	"doodleserver/migrations"      //スキーマと初期データ
	"doodleserver/models"          //モデル定義
	"doodleserver/utils"           //ロガーの初期化とCronジョブ(ルームの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	logger, err := utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// お題の単語。PostgreSQLが設定されていればそちらを使う
	var provider words.Provider = words.NewMemoryProvider(words.DefaultEntries, newRand())
	if config.HasDatabase() {
		provider = loadCatalog(config, logger, provider)
	}

	engineOpts := []game.Option{
		game.WithWordProvider(provider),
		game.WithSettings(config.Settings),
		game.WithExpiry(config.InactivityTimeout.Std(), config.EmptyRoomGrace.Std()),
		game.WithRand(newRand()),
	}

	// Redisはルームのミラー用。接続できなくても起動は続ける
	var snapshots handlers.SnapshotCache
	if rdb, err := database.InitRedis(ctx, config, logger); err != nil {
		logger.Warn("Redis unavailable, running without room cache", zap.Error(err))
	} else {
		defer rdb.Close()
		roomCache := database.NewRoomCache(rdb, logger, 1024)
		go roomCache.Run(ctx)
		snapshots = roomCache
		engineOpts = append(engineOpts, game.WithCache(roomCache, config.CacheTTL.Std()))
	}

	// イベントはキュー経由でWebSocketとNATSへ配信する
	hub := connection.NewHub(logger)
	sinks := broadcast.Fanout{hub}
	if config.NatsURL != "" {
		nc, err := broadcast.ConnectNats(config.NatsURL, logger)
		if err != nil {
			logger.Warn("NATS unavailable, events stay local", zap.Error(err))
		} else {
			defer nc.Drain()
			sinks = append(sinks, broadcast.NewNatsPublisher(nc, "doodle", logger))
		}
	}
	queue := broadcast.NewQueue()
	go queue.Run(ctx, sinks)

	actionLimiter := newActionLimiter(config)
	go actionLimiter.Run(ctx, time.Minute, 10*time.Minute)
	httpLimiter := ratelimit.New(ratelimit.Rule{Rate: config.HTTPRate, Burst: config.HTTPBurst})
	go httpLimiter.Run(ctx, time.Minute, 10*time.Minute)

	engineOpts = append(engineOpts,
		game.WithSink(queue),
		game.WithRateLimiter(actionLimiter),
		game.WithModerator(moderation.NewBlocklist(config.BlockedWords, config.MaxChatLength)),
	)
	engine := game.NewEngine(logger, engineOpts...)
	defer engine.Close()

	secret := config.ReconnectSecret
	if secret == "" {
		secret = uuid.New().String()
		logger.Warn("reconnect_secret is not set, tickets will not survive a restart")
	}
	tickets := auth.NewTickets(secret, config.InactivityTimeout.Std())
	wsServer := connection.NewServer(engine, hub, tickets, logger, originAllowed(config.AllowedOrigins))

	// クーロンスケジューラのセットアップと呼び出し
	sweeper, err := utils.StartRoomSweeper(engine, config.SweepSchedule, logger)
	if err != nil {
		logger.Fatal("Cronジョブの登録に失敗しました", zap.Error(err))
	}
	defer sweeper.Stop()

	router := gin.New()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middlewares.RateLimit(httpLimiter, logger))

	//各HTTPリクエストのルーティング
	handlers.NewHandler(engine, snapshots, logger).Register(router, middlewares.AdminAuth(config.AdminToken, logger))
	router.GET("/ws", gin.WrapF(wsServer.ServeWS))

	srv := &http.Server{Addr: config.ListenAddr, Handler: router}
	go func() {
		logger.Info("Server started", zap.String("addr", config.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to run HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// loadCatalog はマイグレーションを実行し、DBのお題を読み込みます。失敗したら組み込みの単語を使います。
func loadCatalog(config models.Config, logger *zap.Logger, fallback words.Provider) words.Provider {
	db, err := database.InitPostgreSQL(config, logger)
	if err != nil {
		logger.Error("PostgreSQLの初期化に失敗しました。組み込みの単語を使います", zap.Error(err))
		return fallback
	}
	if err := migrations.Migrate(db, logger); err != nil {
		logger.Error("マイグレーションに失敗しました", zap.Error(err))
		return fallback
	}
	catalog, err := database.LoadWordCatalog(db, newRand())
	if err != nil || catalog.Len() == 0 {
		logger.Error("お題の読み込みに失敗しました", zap.Error(err))
		return fallback
	}
	logger.Info("Word catalog loaded", zap.Int("words", catalog.Len()), zap.Strings("categories", catalog.Categories()))
	return catalog
}

// 描画は頻度が高いので別枠にする
func newActionLimiter(config models.Config) *ratelimit.Limiter {
	def := ratelimit.Rule{Rate: config.ActionRate, Burst: config.ActionBurst}
	return ratelimit.New(def,
		ratelimit.WithRule(game.ActionDraw, ratelimit.Rule{Rate: 60, Burst: 120}),
		ratelimit.WithRule(game.ActionJoin, ratelimit.Rule{Rate: 1, Burst: 5}),
		ratelimit.WithRule(game.ActionStart, ratelimit.Rule{Rate: 0.5, Burst: 2}),
	)
}

func originAllowed(allowed []string) func(string) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return nil
		}
		set[o] = true
	}
	return func(origin string) bool { return set[origin] }
}
