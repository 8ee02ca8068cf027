package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/jcnm/meeshy/cmd/api/router/v1"
	cacheAdapter "github.com/jcnm/meeshy/internal/infrastructure/cache/adapter"
	cachePort "github.com/jcnm/meeshy/internal/infrastructure/cache/port"
	"github.com/jcnm/meeshy/internal/infrastructure/database"
	pubsubAdapter "github.com/jcnm/meeshy/internal/infrastructure/pubsub/adapter"
	pubsubPort "github.com/jcnm/meeshy/internal/infrastructure/pubsub/port"
	queueAdapter "github.com/jcnm/meeshy/internal/infrastructure/queue/adapter"
	"github.com/jcnm/meeshy/internal/infrastructure/realtime"
	"github.com/jcnm/meeshy/internal/pkg/translation/application/task"
	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	tcache "github.com/jcnm/meeshy/internal/pkg/translation/cache"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	infAdapter "github.com/jcnm/meeshy/internal/pkg/translation/inference/adapter"
	repoAdapter "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Translation cache backend: Redis, degrading to in-memory when Redis
	// is unavailable so the service still translates (without cross-node
	// cache sharing).
	var cacheBackend cachePort.Cache
	if redisCache, err := cacheAdapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis cache unavailable, using in-memory backend: %v", err)
		cacheBackend = cacheAdapter.NewMemoryCache()
	} else {
		cacheBackend = redisCache
	}
	translationCache := tcache.New(cacheBackend, cacheTTLFromEnv())

	provider, err := infAdapter.NewFromEnv()
	if err != nil {
		log.Fatalf("failed to configure translation provider: %v", err)
	}

	queueClient, err := queueAdapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatalf("failed to create queue client: %v", err)
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer()
	if err != nil {
		log.Fatalf("failed to create queue server: %v", err)
	}

	// Event bus: same degradation story as the cache. In-memory pub/sub
	// still delivers to sessions on this node.
	var pub pubsubPort.Publisher
	var sub pubsubPort.Subscriber
	if redisBus, err := pubsubAdapter.NewRedisPubSubFromEnv(); err != nil {
		log.Printf("Warning: redis pub/sub unavailable, events stay node-local: %v", err)
		memBus := pubsubAdapter.NewMemoryPubSub()
		pub, sub = memBus, memBus
	} else {
		pub, sub = redisBus, redisBus
	}
	defer pub.Close()

	res := resolver.New(os.Getenv("DEFAULT_LANGUAGE"))
	dist := distribution.NewDistributor(pub)
	sessions := realtime.NewRouter()
	defer sessions.Close()

	// Bridge bus events into this node's websocket sessions.
	bridge := distribution.NewBridge(sub, sessions, repoAdapter.NewPgMembershipProvider(pool), res)
	go func() {
		if err := bridge.Run(rootCtx); err != nil && rootCtx.Err() == nil {
			log.Printf("distribution bridge stopped: %v", err)
		}
	}()

	// Background workers: fan-out and per-language translation units.
	task.RegisterTranslationTasks(queueServer, task.Deps{
		Pool:        pool,
		Cache:       translationCache,
		Provider:    provider,
		Queue:       queueClient,
		Distributor: dist,
		Resolver:    res,
		UnitConfig:  usecase.TranslateLanguageConfig{CallTimeout: 30 * time.Second},
	})
	go func() {
		if err := queueServer.Run(rootCtx); err != nil {
			log.Printf("queue server stopped: %v", err)
		}
	}()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, queueClient, res, dist, sessions)

	// Start HTTP server (blocks until shutdown)
	_ = r.Run()
}

// cacheTTLFromEnv reads TRANSLATION_CACHE_TTL as a Go duration, falling back
// to the cache package default when unset or invalid.
func cacheTTLFromEnv() time.Duration {
	v := os.Getenv("TRANSLATION_CACHE_TTL")
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid TRANSLATION_CACHE_TTL %q, using default: %v", v, err)
		return 0
	}
	return d
}
