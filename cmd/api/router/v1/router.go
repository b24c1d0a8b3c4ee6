package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/port"
	qport "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/port"
	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	storageport "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/port"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	callHTTP "github.com/pranishuprety/Respondrr/internal/pkg/call/presentation/http"
	messagingHTTP "github.com/pranishuprety/Respondrr/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts the v1 API under /api/v1 and the call signaling
// endpoints under /api/video.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, cache cacheport.Cache, queue qport.Client, blobs storageport.BlobStore, rooms hostport.RoomProvider) {
	v1 := r.Group("/api/v1")
	// Pass the DB connection, hub, cache, queue client and blob store down to the HTTP layer
	messagingHTTP.RegisterRoutes(v1, pool, hub, cache, queue, blobs)

	video := r.Group("/api/video")
	callHTTP.RegisterSignalRoutes(video, v1, pool, rooms, hub)
}
