package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/comment"
	"github.com/xieumar/HNG-Framez/internal/config"
	"github.com/xieumar/HNG-Framez/internal/database"
	"github.com/xieumar/HNG-Framez/internal/engine"
	"github.com/xieumar/HNG-Framez/internal/events"
	"github.com/xieumar/HNG-Framez/internal/like"
	"github.com/xieumar/HNG-Framez/internal/live"
	"github.com/xieumar/HNG-Framez/internal/logs"
	"github.com/xieumar/HNG-Framez/internal/middleware"
	"github.com/xieumar/HNG-Framez/internal/post"
	"github.com/xieumar/HNG-Framez/internal/storage"
	"github.com/xieumar/HNG-Framez/internal/user"
)

func main() {
	logs.Init("info")
	defer logs.Sync()

	cfg, err := config.Load()
	if err != nil {
		logs.L().Fatal("config", zap.Error(err))
	}
	logs.Init(cfg.LogLevel)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DBUrl, cfg.Debug)
	if err != nil {
		logs.L().Fatal("database", zap.Error(err))
	}
	if err := database.Migrate(db, &user.User{}, &post.Post{}, &like.Like{}, &comment.Comment{}); err != nil {
		logs.L().Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()

	var bus *events.Bus
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logs.L().Fatal("redis url", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logs.L().Fatal("redis", zap.Error(err))
		}
		bus = events.NewBusWithRedis(ctx, rdb, "framez:changes")
	} else {
		bus = events.NewBus()
	}

	eng := engine.New(db, bus)

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:    cfg.AWSRegion,
		Bucket:    cfg.AWSBucket,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		UploadTTL: time.Duration(cfg.UploadTTLSecs) * time.Second,
	})
	if err != nil {
		logs.L().Fatal("object store", zap.Error(err))
	}

	users := user.NewService(eng, store)
	posts := post.NewService(eng, store)
	likes := like.NewService(eng)
	comments := comment.NewService(eng, store)

	verifier, err := middleware.NewVerifier(cfg.AuthPublicKey, users)
	if err != nil {
		logs.L().Fatal("auth verifier", zap.Error(err))
	}

	registry := live.NewRegistry(bus)
	registerQueries(registry, posts, likes, comments)

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	userHandler := user.NewHandler(users)
	postHandler := post.NewHandler(posts)
	likeHandler := like.NewHandler(likes)
	commentHandler := comment.NewHandler(comments)
	liveHandler := live.NewHandler(registry)

	api := r.Group("/api")

	// unrestricted reads; identity only enriches the response
	public := api.Group("")
	public.Use(verifier.OptionalAuth())
	public.GET("/posts", postHandler.GetAll)
	public.GET("/posts/:id", postHandler.GetByID)
	public.GET("/posts/:id/likes", likeHandler.ForPost)
	public.GET("/posts/:id/comments", commentHandler.ForPost)
	public.GET("/live/:query", liveHandler.Stream)

	authed := api.Group("")
	authed.Use(verifier.Auth())
	authed.POST("/users/sync", userHandler.Sync)
	authed.GET("/me", userHandler.Me)

	// mutations need a provisioned account
	mutating := authed.Group("")
	mutating.Use(middleware.RequireUser())
	mutating.POST("/uploads", func(c *gin.Context) {
		ticket, err := store.CreateUploadTicket(c.Request.Context())
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ticket)
	})
	mutating.POST("/posts", postHandler.Create)
	mutating.GET("/posts/mine", postHandler.Mine)
	mutating.PUT("/posts/:id", postHandler.Update)
	mutating.DELETE("/posts/:id", postHandler.Delete)
	mutating.POST("/posts/:id/share", postHandler.Share)
	mutating.POST("/posts/:id/like", likeHandler.Toggle)
	mutating.POST("/posts/:id/comments", commentHandler.Create)
	mutating.DELETE("/comments/:id", commentHandler.Delete)

	logs.L().Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logs.L().Fatal("server", zap.Error(err))
	}
}

// registerQueries binds the live query names clients subscribe to. The table
// lists are what make invalidation precise: a commit refreshes a query only
// when it touched a table the query reads.
func registerQueries(registry *live.Registry, posts *post.Service, likes *like.Service, comments *comment.Service) {
	registry.Register(live.Definition{
		Name:   "feed",
		Tables: []string{post.Table, user.Table},
		Run: func(ctx context.Context, args live.Args) (any, error) {
			return posts.GetAll(ctx)
		},
	})
	registry.Register(live.Definition{
		Name:   "userPosts",
		Tables: []string{post.Table},
		Run: func(ctx context.Context, args live.Args) (any, error) {
			return posts.GetForUser(ctx, args["userId"])
		},
	})
	registry.Register(live.Definition{
		Name:   "postComments",
		Tables: []string{comment.Table, user.Table},
		Run: func(ctx context.Context, args live.Args) (any, error) {
			return comments.ForPost(ctx, args["postId"])
		},
	})
	registry.Register(live.Definition{
		Name:   "postLikes",
		Tables: []string{like.Table, user.Table},
		Run: func(ctx context.Context, args live.Args) (any, error) {
			return likes.ForPost(ctx, args["postId"])
		},
	})
}
