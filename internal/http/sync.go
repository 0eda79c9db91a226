package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/reconcile"
)

// SyncController exposes the reconciler.
type SyncController struct {
	syncer Syncer
}

func NewSyncController(syncer Syncer) *SyncController {
	return &SyncController{syncer: syncer}
}

// Sync handles POST /api/sync
func (sc *SyncController) Sync(c *gin.Context) {
	var req entities.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid sync request: "+err.Error())
		return
	}

	deviceID, ok := requestDeviceID(c, req.DeviceID)
	if !ok {
		return
	}
	req.DeviceID = deviceID

	resp, err := sc.syncer.Sync(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, reconcile.ErrMissingDevice) {
			respondBadRequest(c, "device_id is required")
			return
		}
		respondInternalError(c, err, "sync")
		return
	}

	c.JSON(http.StatusOK, resp)
}
