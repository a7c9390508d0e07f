// Package summary interprets the key=value summary file the engine leaves behind.
package summary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
)

// ErrSummaryMissing indicates the engine exited cleanly without writing a summary.
var ErrSummaryMissing = errors.New("engine did not write a summary")

// Common keys.
const (
	KeyOK           = "ok"
	KeyMessage      = "mensaje"
	KeyDuplicateIDs = "duplicados_asin"
)

// Export schema keys.
const (
	KeyDuplicates       = "duplicados"
	KeyProcessed        = "procesados"
	KeySkippedBase      = "saltados_base"
	KeySkippedCancelled = "saltados_cancelados"
	KeyTotalReport      = "total_reporte"
	KeyNoIDRows         = "sin_asin_filas"
	KeyDuplicateRows    = "duplicados_filas"
	KeyBaseMatches      = "match_bd"
	KeyRejected         = "rechazados_total"
)

// Merge schema keys. KeyTotalReport, KeyDuplicateRows and KeyNoIDRows are shared.
const (
	KeyCancelledRows    = "cancelados_filas"
	KeyCancelledIDs     = "cancelados_asin"
	KeyUniqueIDs        = "asins_unicos"
	KeyAdded            = "agregados"
	KeyModified         = "modificados"
	KeyUnchanged        = "sin_cambios"
	KeyBaseConsolidated = "base_consolidadas"
	KeyBaseRemoved      = "base_eliminadas"
	KeyBaseBefore       = "base_antes"
	KeyBaseAfter        = "base_despues"
	KeyPreviewStart     = "preview_inicio"
)

var mergeOnlyKeys = []string{
	KeyCancelledRows, KeyCancelledIDs, KeyUniqueIDs, KeyAdded, KeyModified, KeyUnchanged,
	KeyBaseConsolidated, KeyBaseRemoved, KeyBaseBefore, KeyBaseAfter, KeyPreviewStart,
}

// Parse reads the summary at path using the schema of mode.
// A missing file yields ErrSummaryMissing and no record.
func Parse(path string, mode models.Operation) (*models.SummaryRecord, error) {
	p, err := load(path)
	if err != nil {
		return nil, err
	}
	return FromProperties(p, mode)
}

// ParseAuto reads the summary at path and infers the schema from its keys.
func ParseAuto(path string) (*models.SummaryRecord, error) {
	p, err := load(path)
	if err != nil {
		return nil, err
	}
	return FromProperties(p, DetectMode(p))
}

// ParseString parses summary text using the schema of mode.
func ParseString(text string, mode models.Operation) (*models.SummaryRecord, error) {
	p, err := loader().LoadBytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return FromProperties(p, mode)
}

// DetectMode returns OperationMerge when any merge-only key is present.
func DetectMode(p *properties.Properties) models.Operation {
	for _, key := range mergeOnlyKeys {
		if _, ok := p.Get(key); ok {
			return models.OperationMerge
		}
	}
	return models.OperationExport
}

// FromProperties builds a record from loaded properties.
// Absent or malformed counters become 0; absent ok means true.
func FromProperties(p *properties.Properties, mode models.Operation) (*models.SummaryRecord, error) {
	rec := &models.SummaryRecord{
		Mode:            mode,
		OK:              parseBool(p, KeyOK, true),
		Message:         strings.TrimSpace(p.GetString(KeyMessage, "")),
		DuplicateIDsRaw: p.GetString(KeyDuplicateIDs, ""),
	}

	switch mode {
	case models.OperationExport:
		rec.Export = &models.ExportSummary{
			Duplicates:       intOf(p, KeyDuplicates),
			Processed:        intOf(p, KeyProcessed),
			SkippedBase:      intOf(p, KeySkippedBase),
			SkippedCancelled: intOf(p, KeySkippedCancelled),
			TotalReportRows:  intOf(p, KeyTotalReport),
			NoIDRows:         intOf(p, KeyNoIDRows),
			DuplicateRows:    intOf(p, KeyDuplicateRows),
			BaseMatches:      intOf(p, KeyBaseMatches),
			Rejected:         intOf(p, KeyRejected),
		}
	case models.OperationMerge:
		rec.Merge = &models.MergeSummary{
			TotalReportRows:  intOf(p, KeyTotalReport),
			DuplicateRows:    intOf(p, KeyDuplicateRows),
			CancelledRows:    intOf(p, KeyCancelledRows),
			CancelledIDs:     intOf(p, KeyCancelledIDs),
			NoIDRows:         intOf(p, KeyNoIDRows),
			UniqueIDs:        intOf(p, KeyUniqueIDs),
			Added:            intOf(p, KeyAdded),
			Modified:         intOf(p, KeyModified),
			Unchanged:        intOf(p, KeyUnchanged),
			BaseConsolidated: intOf(p, KeyBaseConsolidated),
			BaseRemoved:      intOf(p, KeyBaseRemoved),
			BaseBefore:       intOf(p, KeyBaseBefore),
			BaseAfter:        intOf(p, KeyBaseAfter),
			PreviewStart:     intOf(p, KeyPreviewStart),
		}
	default:
		return nil, fmt.Errorf("no summary schema for operation %q", mode)
	}
	return rec, nil
}

func load(path string) (*properties.Properties, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSummaryMissing, path)
		}
		return nil, fmt.Errorf("stat summary: %w", err)
	}
	p, err := loader().LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}
	return p, nil
}

// loader reads UTF-8 without ${} expansion; values are taken literally.
func loader() *properties.Loader {
	return &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
}

// intOf parses a 32-bit integer, returning 0 for absent or malformed values.
func intOf(p *properties.Properties, key string) int {
	v, ok := p.Get(key)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0
	}
	return int(n)
}

// parseBool is true only for "true" in any case; absent keys yield def.
func parseBool(p *properties.Properties, key string, def bool) bool {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
