// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - EntryStore: Entry persistence for the entry service (internal/services/interfaces.go)
//   - reconcile.EntryStore / Store: Transactional access for sync rounds (internal/reconcile/store.go)
//   - DeviceRepository: Registered devices and token hashes (internal/auth/service.go)
//
// ## Similarity Interfaces
//
//   - VectorIndex: Nearest-neighbour index over entry embeddings (internal/services/interfaces.go)
//   - Embedder: Text to fixed-dimension vector (internal/embedding/embedder.go)
//   - IndexMaintainer: Index upkeep after committed sync writes (internal/reconcile/reconciler.go)
//
// ## Analysis Interfaces
//
//   - Analyzer: Produces the structured analysis stored with an entry (internal/analysis/analyzer.go)
//   - Completer: Chat completion backend used by the LLM analyzer (internal/analysis/chat.go)
//
// ## Background Work Interfaces
//
//   - ReanalysisScheduler: Queues a retry for entries stored with fallback analysis (internal/services/interfaces.go)
//   - EntryReanalyzer, IndexRebuilder, AuditPruner: Task processors' dependencies (internal/tasks/)
//   - TaskEnqueuer: What the maintenance scheduler needs from the queue (internal/scheduler/maintenance.go)
//
// ## HTTP Interfaces
//
// Controllers depend on the narrow interfaces in internal/http/stores.go:
// EntryService, Syncer, TaskQueue, AuditReader, Pinger and IndexSizer.
//
// # Adding a New Embedder
//
//  1. Implement Embedder in internal/embedding/
//
//     type RemoteEmbedder struct {
//         client *http.Client
//         dim    int
//     }
//
//     func (e *RemoteEmbedder) Dimension() int
//     func (e *RemoteEmbedder) Embed(text string) []float32
//
//     var _ Embedder = (*RemoteEmbedder)(nil)
//
//  2. Construct it in entrypoint.go and run 'reindex' so stored vectors match
//     the new dimension.
//
// # Adding a New Analysis Backend
//
// Implement Completer for another chat API, or Analyzer directly when the
// backend returns structured results:
//
//	func (c *OllamaClient) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
//
//	var _ analysis.Completer = (*OllamaClient)(nil)
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/ (see rebuild_index.go)
//  2. Register the queue in Client.RegisterQueues
//  3. Add it to Catalogue() so POST /api/tasks/:type can run it
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
