package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	"github.com/pranishuprety/Respondrr/internal/pkg/call/presentation/controller"
)

// RegisterSignalRoutes mounts the call signaling endpoints. The action paths
// live under /api/video for compatibility with existing clients; the record
// read lives with the rest of the v1 API.
func RegisterSignalRoutes(video *gin.RouterGroup, v1 *gin.RouterGroup, pool *pgxpool.Pool, rooms hostport.RoomProvider, hub *realtime.Hub) {
	initiateCtl := controller.NewInitiateCallController(pool, rooms, hub)
	acceptCtl := controller.NewAcceptCallController(pool, rooms, hub)
	rejectCtl := controller.NewRejectCallController(pool, hub)
	endCtl := controller.NewEndCallController(pool, hub)
	getCtl := controller.NewGetCallController(pool)

	// POST /api/video/initiate-call -> room + ringing record + initiator token
	video.POST("/initiate-call", initiateCtl.Handle())

	// POST /api/video/accept-call -> accepted + callee token
	video.POST("/accept-call", acceptCtl.Handle())

	// POST /api/video/reject-call -> rejected
	video.POST("/reject-call", rejectCtl.Handle())

	// POST /api/video/end-call -> ended, idempotent
	video.POST("/end-call", endCtl.Handle())

	// GET /api/v1/video/calls/:callId -> current record
	v1.GET("/video/calls/:callId", getCtl.Handle())
}
