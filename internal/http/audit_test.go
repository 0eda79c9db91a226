package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/phrasebook/internal/entities"
)

func TestAuditController_GetAuditEvents(t *testing.T) {
	reader := &fakeAudit{events: []entities.AuditEvent{
		{ID: 1, DeviceID: "phone", EventType: entities.AuditEventSync, Action: "sync_round", Status: entities.AuditStatusSuccess},
	}}
	controller := NewAuditController(reader)

	router := gin.New()
	router.GET("/api/audit", controller.GetAuditEvents)

	w := doJSON(router, "GET", "/api/audit?page=2&limit=10&type=sync&device=phone", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sync_round"`)
	assert.Equal(t, "phone", reader.lastDevice)
	assert.Equal(t, entities.AuditEventSync, reader.lastType)
	assert.Equal(t, 10, reader.lastLimit)
	assert.Equal(t, 10, reader.lastOffset)

	w = doJSON(router, "GET", "/api/audit?type=import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "GET", "/api/audit?limit=1000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, reader.lastLimit)
}
