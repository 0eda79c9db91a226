package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/phrasebook/internal/analysis"
	"github.com/mrlokans/phrasebook/internal/audit"
	"github.com/mrlokans/phrasebook/internal/auth"
	"github.com/mrlokans/phrasebook/internal/database"
	"github.com/mrlokans/phrasebook/internal/database/devices"
	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/embedding"
	"github.com/mrlokans/phrasebook/internal/http"
	"github.com/mrlokans/phrasebook/internal/reconcile"
	"github.com/mrlokans/phrasebook/internal/scheduler"
	"github.com/mrlokans/phrasebook/internal/services"
	"github.com/mrlokans/phrasebook/internal/similarity"
	"github.com/mrlokans/phrasebook/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.EntryStore = (*entries.Repository)(nil)
var _ auth.DeviceRepository = (*devices.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Similarity Index
// =============================================================================

var _ services.VectorIndex = (*similarity.Index)(nil)
var _ embedding.Embedder = (*embedding.HashEmbedder)(nil)

// =============================================================================
// Analysis
// =============================================================================

var _ analysis.Completer = (*analysis.ChatClient)(nil)
var _ analysis.Analyzer = (*analysis.LLMAnalyzer)(nil)
var _ analysis.Analyzer = analysis.Disabled{}

// =============================================================================
// Entry Service
// =============================================================================

var _ http.EntryService = (*services.EntryService)(nil)
var _ http.IndexSizer = (*services.EntryService)(nil)
var _ reconcile.IndexMaintainer = (*services.EntryService)(nil)
var _ tasks.EntryReanalyzer = (*services.EntryService)(nil)
var _ tasks.IndexRebuilder = (*services.EntryService)(nil)

// =============================================================================
// Sync
// =============================================================================

var _ http.Syncer = (*reconcile.Reconciler)(nil)

// =============================================================================
// Auditing
// =============================================================================

var _ services.EventLogger = (*audit.Service)(nil)
var _ reconcile.RoundLogger = (*audit.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ tasks.AuditPruner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
var _ services.ReanalysisScheduler = (*tasks.Client)(nil)
