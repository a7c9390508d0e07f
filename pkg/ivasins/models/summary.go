package models

import "strings"

// SummaryRecord represents the structured result of a successful run.
// Exactly one of Export or Merge is set, matching Mode.
type SummaryRecord struct {
	// Mode is the operation whose schema was applied.
	Mode Operation `json:"mode"`
	// OK is the engine's own success flag (true when the key is absent).
	OK bool `json:"ok"`
	// Message is the optional engine message.
	Message string `json:"message,omitempty"`
	// DuplicateIDsRaw is the comma-joined duplicate identifier list as written.
	DuplicateIDsRaw string `json:"duplicate_ids,omitempty"`
	// Export holds the export schema counters.
	Export *ExportSummary `json:"export,omitempty"`
	// Merge holds the merge schema counters.
	Merge *MergeSummary `json:"merge,omitempty"`
}

// ExportSummary holds the counters of an export run.
type ExportSummary struct {
	Duplicates       int `json:"duplicates"`
	Processed        int `json:"processed"`
	SkippedBase      int `json:"skipped_base"`
	SkippedCancelled int `json:"skipped_cancelled"`
	TotalReportRows  int `json:"total_report_rows"`
	NoIDRows         int `json:"no_id_rows"`
	DuplicateRows    int `json:"duplicate_rows"`
	BaseMatches      int `json:"base_matches"`
	Rejected         int `json:"rejected"`
}

// MergeSummary holds the counters of a merge run.
type MergeSummary struct {
	TotalReportRows  int `json:"total_report_rows"`
	DuplicateRows    int `json:"duplicate_rows"`
	CancelledRows    int `json:"cancelled_rows"`
	CancelledIDs     int `json:"cancelled_ids"`
	NoIDRows         int `json:"no_id_rows"`
	UniqueIDs        int `json:"unique_ids"`
	Added            int `json:"added"`
	Modified         int `json:"modified"`
	Unchanged        int `json:"unchanged"`
	BaseConsolidated int `json:"base_consolidated"`
	BaseRemoved      int `json:"base_removed"`
	BaseBefore       int `json:"base_before"`
	BaseAfter        int `json:"base_after"`
	PreviewStart     int `json:"preview_start"`
}

// DuplicateIDs splits DuplicateIDsRaw into trimmed, non-empty identifiers.
func (r *SummaryRecord) DuplicateIDs() []string {
	var ids []string
	for _, id := range strings.Split(r.DuplicateIDsRaw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DuplicateSample returns at most limit duplicate identifiers and whether
// more were left out.
func (r *SummaryRecord) DuplicateSample(limit int) ([]string, bool) {
	ids := r.DuplicateIDs()
	if limit < 0 || len(ids) <= limit {
		return ids, false
	}
	return ids[:limit], true
}

// Processed returns the number of rows written to the output for either schema.
func (r *SummaryRecord) Processed() int {
	switch {
	case r.Export != nil:
		return r.Export.Processed
	case r.Merge != nil:
		return r.Merge.Added + r.Merge.Modified
	}
	return 0
}
