package tasks

// TypeInfo describes a task that can be triggered on demand.
type TypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// Catalogue lists the task types exposed through the API.
func Catalogue() []TypeInfo {
	return []TypeInfo{
		{
			Type:        ReanalyzeEntryTask{}.Config().Name,
			Description: "Re-run language analysis for one entry (entry_id, version)",
			Queue:       ReanalyzeEntryTask{}.Config().Name,
		},
		{
			Type:        RebuildIndexTask{}.Config().Name,
			Description: "Re-embed all live entries and replace the similarity index",
			Queue:       RebuildIndexTask{}.Config().Name,
		},
		{
			Type:        CleanupAuditEventsTask{}.Config().Name,
			Description: "Delete audit events past the retention period",
			Queue:       CleanupAuditEventsTask{}.Config().Name,
		},
	}
}
