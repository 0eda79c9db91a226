package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/services"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	maxSimilarLimit  = 50
)

// EntriesController serves the entry CRUD and similarity endpoints.
type EntriesController struct {
	entries EntryService
}

func NewEntriesController(entries EntryService) *EntriesController {
	return &EntriesController{entries: entries}
}

type CreateEntryRequest struct {
	Content  string `json:"content" binding:"required"`
	Source   string `json:"source"`
	Note     string `json:"note"`
	DeviceID string `json:"device_id"`
}

// UpdateEntryRequest is a partial edit. Version is the version the client
// last saw; a stale one yields 409.
type UpdateEntryRequest struct {
	Content  *string  `json:"content"`
	Source   *string  `json:"source"`
	Note     *string  `json:"note"`
	Tags     []string `json:"tags"`
	Version  int      `json:"version" binding:"required,min=1"`
	DeviceID string   `json:"device_id"`
}

// SimilarEntryResponse is one neighbour in GET /api/entries/:id/similar.
type SimilarEntryResponse struct {
	ID         uint               `json:"id"`
	Content    string             `json:"content"`
	EntryType  entities.EntryType `json:"entry_type"`
	Similarity float32            `json:"similarity"`
	AIAnalysis string             `json:"ai_analysis"`
	Tags       string             `json:"tags"`
}

// Create handles POST /api/entries
func (ec *EntriesController) Create(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "content is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondBadRequest(c, "content is required")
		return
	}
	deviceID, ok := requestDeviceID(c, req.DeviceID)
	if !ok {
		return
	}

	entry, err := ec.entries.Create(c.Request.Context(), services.CreateInput{
		Content:  req.Content,
		Source:   req.Source,
		Note:     req.Note,
		DeviceID: deviceID,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyContent) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "create entry")
		return
	}

	respondCreated(c, entry)
}

// List handles GET /api/entries?offset=&limit=
func (ec *EntriesController) List(c *gin.Context) {
	offset, ok := parseIntQuery(c, "offset", 0)
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit", defaultListLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	list, err := ec.entries.List(offset, limit)
	if err != nil {
		respondInternalError(c, err, "list entries")
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Search handles GET /api/entries/search?q=
func (ec *EntriesController) Search(c *gin.Context) {
	// The match is an exact substring, so surrounding spaces are significant.
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}

	found, err := ec.entries.Search(query)
	if err != nil {
		respondInternalError(c, err, "search entries")
		return
	}
	c.JSON(http.StatusOK, nonNil(found))
}

// Changes handles GET /api/entries/changes?since=&exclude_device=
// A missing since returns every live entry.
func (ec *EntriesController) Changes(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			respondBadRequest(c, "since must be an RFC3339 timestamp")
			return
		}
		since = parsed
	}

	changed, err := ec.entries.Changes(since, c.Query("exclude_device"))
	if err != nil {
		respondInternalError(c, err, "list changes")
		return
	}
	c.JSON(http.StatusOK, nonNil(changed))
}

// Get handles GET /api/entries/:id
func (ec *EntriesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := ec.entries.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondNotFound(c, "entry")
			return
		}
		respondInternalError(c, err, "get entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Similar handles GET /api/entries/:id/similar?limit=
func (ec *EntriesController) Similar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit", services.DefaultSimilarLimit)
	if !ok {
		return
	}
	if limit == 0 || limit > maxSimilarLimit {
		limit = services.DefaultSimilarLimit
	}

	similar, err := ec.entries.FindSimilar(id, limit)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondNotFound(c, "entry")
			return
		}
		respondInternalError(c, err, "find similar entries")
		return
	}

	out := make([]SimilarEntryResponse, 0, len(similar))
	for _, s := range similar {
		out = append(out, SimilarEntryResponse{
			ID:         s.Entry.ID,
			Content:    s.Entry.Content,
			EntryType:  s.Entry.EntryType,
			Similarity: s.Similarity,
			AIAnalysis: s.Entry.AIAnalysis,
			Tags:       s.Entry.Tags,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Update handles PATCH /api/entries/:id
func (ec *EntriesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "version is required")
		return
	}
	deviceID, ok := requestDeviceID(c, req.DeviceID)
	if !ok {
		return
	}

	updated, err := ec.entries.Update(c.Request.Context(), id, services.UpdateInput{
		Content:  req.Content,
		Source:   req.Source,
		Note:     req.Note,
		Tags:     req.Tags,
		DeviceID: deviceID,
	}, req.Version)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			respondNotFound(c, "entry")
		case errors.Is(err, services.ErrVersionConflict):
			var current any
			if entry, getErr := ec.entries.Get(id); getErr == nil {
				current = entry
			}
			respondConflict(c, "entry was modified by another device", current)
		case errors.Is(err, services.ErrEmptyContent):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "update entry")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/entries/:id
func (ec *EntriesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	deviceID, ok := requestDeviceID(c, "")
	if !ok {
		return
	}

	if err := ec.entries.Delete(id, deviceID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondNotFound(c, "entry")
			return
		}
		respondInternalError(c, err, "delete entry")
		return
	}
	respondSuccess(c, "Entry deleted successfully")
}

func nonNil(list []entities.Entry) []entities.Entry {
	if list == nil {
		return []entities.Entry{}
	}
	return list
}
