package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/port"
	qport "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/port"
	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	storageport "github.com/pranishuprety/Respondrr/internal/infrastructure/storage/port"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/presentation/controller"
)

// RegisterRoutes registers messaging endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, cache cacheport.Cache, queue qport.Client, blobs storageport.BlobStore) {
	ensureCtl := controller.NewEnsureConversationController(pool, cache)
	sendCtl := controller.NewSendMessageController(pool, hub, queue)
	listCtl := controller.NewGetMessagesController(pool)
	socketCtl := controller.NewNotifySocketController(hub)

	// POST /api/v1/conversations -> get-or-create the (patient, doctor) thread
	g.POST("/conversations", ensureCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> append a message
	g.POST("/conversations/:conversationId/messages", sendCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> full ordered list
	g.GET("/conversations/:conversationId/messages", listCtl.Handle())

	// GET /api/v1/ws -> change-notifier websocket
	g.GET("/ws", socketCtl.Handle())

	// GET /api/v1/files/:bucket/*objectPath -> attachment bytes
	if blobs != nil {
		downloadCtl := controller.NewDownloadAttachmentController(blobs)
		g.GET("/files/:bucket/*objectPath", downloadCtl.Handle())
	}
}
