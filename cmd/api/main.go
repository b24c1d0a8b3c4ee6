package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/pranishuprety/Respondrr/cmd/api/router/v1"
	cacheadapter "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/adapter"
	cacheport "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/port"
	"github.com/pranishuprety/Respondrr/internal/infrastructure/database"
	queueadapter "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/adapter"
	qport "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/port"
	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	storageadapter "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/adapter"
	storageport "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/port"
	hostadapter "github.com/pranishuprety/Respondrr/internal/pkg/call/host/adapter"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/application/task"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis cache is optional; conversation lookups just skip memoization
	// without it.
	var cache cacheport.Cache
	if rc, err := cacheadapter.NewRedisAdapter(); err != nil {
		log.Printf("Warning: redis cache disabled: %v", err)
	} else {
		cache = rc
		defer rc.Close()
	}

	// Asynq client + in-process worker for the watermark task. Also optional:
	// messages still land without the background touch.
	var queue qport.Client
	if qc, err := queueadapter.NewAsynqClientFromEnv(); err != nil {
		log.Printf("Warning: task queue disabled: %v", err)
	} else {
		queue = qc
		defer qc.Close()
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if queue != nil {
		srv, err := queueadapter.NewAsynqServer()
		if err != nil {
			log.Printf("Warning: task worker disabled: %v", err)
		} else {
			task.RegisterTouchConversationTask(srv, pool)
			go func() {
				if err := srv.Run(runCtx); err != nil {
					log.Printf("task worker stopped: %v", err)
				}
			}()
		}
	}

	// Attachment blob store, rooted at STORAGE_DIR. Optional: without it the
	// download endpoint is simply not mounted.
	var blobs storageport.BlobStore
	if fsStore, err := storageadapter.NewFSBlobStoreFromEnv(); err != nil {
		log.Printf("Warning: attachment storage disabled: %v", err)
	} else {
		blobs = fsStore
	}

	rooms, err := hostadapter.NewDailyProviderFromEnv()
	if err != nil {
		log.Fatalf("failed to configure video room provider: %v", err)
	}

	hub := realtime.NewHub()
	defer hub.Close()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, hub, cache, queue, blobs, rooms)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	httpSrv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()
	log.Printf("listening on :%s", port)

	<-runCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
