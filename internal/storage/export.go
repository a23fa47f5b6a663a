// ABOUTME: Export and import functionality for cut data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/makeweight/internal/models"
)

const exportVersion = "1.0"

// ExportData represents the full export format.
type ExportData struct {
	Version    string                  `json:"version" yaml:"version"`
	ExportedAt time.Time               `json:"exported_at" yaml:"exported_at"`
	Tool       string                  `json:"tool" yaml:"tool"`
	Profile    *models.AthleteProfile  `json:"profile,omitempty" yaml:"profile,omitempty"`
	WeightLogs []*models.WeightLog     `json:"weight_logs" yaml:"weight_logs"`
	Tracking   []*models.DailyTracking `json:"tracking" yaml:"tracking"`
}

// ImportSummary counts imported records.
type ImportSummary struct {
	Profile    bool
	WeightLogs int
	Tracking   int
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Tool:       "makeweight",
	}

	p, err := d.GetProfile(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	data.Profile = p

	if data.WeightLogs, err = d.ListLogs(ctx, LogFilter{}); err != nil {
		return nil, fmt.Errorf("list weight logs: %w", err)
	}
	if data.Tracking, err = d.ListTracking(ctx); err != nil {
		return nil, fmt.Errorf("list tracking: %w", err)
	}
	return data, nil
}

// ImportData upserts every record in data. Re-importing the same export is a no-op.
func (d *DB) ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error) {
	summary := &ImportSummary{}
	if data.Profile != nil {
		if err := d.SaveProfile(ctx, data.Profile); err != nil {
			return summary, fmt.Errorf("import profile: %w", err)
		}
		summary.Profile = true
	}

	for _, l := range data.WeightLogs {
		if err := d.upsertLog(ctx, l); err != nil {
			return summary, fmt.Errorf("import weight log %s: %w", l.ShortID(), err)
		}
		summary.WeightLogs++
	}

	for _, rec := range data.Tracking {
		if err := d.SaveTracking(ctx, rec); err != nil {
			return summary, fmt.Errorf("import tracking %s: %w", rec.Date, err)
		}
		summary.Tracking++
	}

	d.logger.Info("import complete", "logs", summary.WeightLogs, "tracking", summary.Tracking)
	return summary, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, raw []byte) (*ImportSummary, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &data)
}

// ExportYAML exports all data as YAML with weight logs grouped by type.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                     `yaml:"version"`
		ExportedAt string                     `yaml:"exported_at"`
		Tool       string                     `yaml:"tool"`
		Profile    *yamlProfile               `yaml:"profile,omitempty"`
		WeightLogs map[string][]yamlWeightLog `yaml:"weight_logs"`
		Tracking   []yamlTracking             `yaml:"tracking"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		WeightLogs: make(map[string][]yamlWeightLog),
		Tracking:   make([]yamlTracking, 0, len(data.Tracking)),
	}

	if p := data.Profile; p != nil {
		yamlData.Profile = &yamlProfile{
			Name:        p.Name,
			TargetClass: p.TargetClass,
			WeighIn:     models.DateKey(p.WeighInDate),
			Protocol:    p.Protocol.String(),
		}
	}

	for _, l := range data.WeightLogs {
		yl := yamlWeightLog{
			ID:         l.ShortID(),
			Weight:     l.Weight,
			RecordedAt: l.RecordedAt.Format(time.RFC3339),
		}
		if l.DurationMinutes != nil {
			yl.DurationMinutes = *l.DurationMinutes
		}
		if l.Notes != nil {
			yl.Notes = *l.Notes
		}
		t := string(l.Type)
		yamlData.WeightLogs[t] = append(yamlData.WeightLogs[t], yl)
	}

	for _, rec := range data.Tracking {
		yamlData.Tracking = append(yamlData.Tracking, yamlTracking{
			Date:     rec.Date,
			WaterOz:  rec.WaterOz,
			CarbsG:   rec.CarbsG,
			ProteinG: rec.ProteinG,
			Slices:   rec.Slices.Total(),
			LastMode: string(rec.LastMode),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlProfile struct {
	Name        string  `yaml:"name,omitempty"`
	TargetClass float64 `yaml:"target_class"`
	WeighIn     string  `yaml:"weigh_in"`
	Protocol    string  `yaml:"protocol"`
}

type yamlWeightLog struct {
	ID              string  `yaml:"id"`
	Weight          float64 `yaml:"weight"`
	RecordedAt      string  `yaml:"recorded_at"`
	DurationMinutes int     `yaml:"duration_minutes,omitempty"`
	Notes           string  `yaml:"notes,omitempty"`
}

type yamlTracking struct {
	Date     string  `yaml:"date"`
	WaterOz  float64 `yaml:"water_oz"`
	CarbsG   float64 `yaml:"carbs_g"`
	ProteinG float64 `yaml:"protein_g"`
	Slices   int     `yaml:"slices"`
	LastMode string  `yaml:"last_mode,omitempty"`
}

// ExportMarkdown exports data as Markdown, optionally filtered by type and start time.
func (d *DB) ExportMarkdown(ctx context.Context, mt *models.MeasurementType, since *time.Time) (string, error) {
	logs, err := d.ListLogs(ctx, LogFilter{Type: mt, Since: since})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Weight Cut Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	p, err := d.GetProfile(ctx)
	if err == nil {
		sb.WriteString("## Profile\n\n")
		if p.Name != "" {
			sb.WriteString(fmt.Sprintf("- Athlete: %s\n", p.Name))
		}
		sb.WriteString(fmt.Sprintf("- Weight class: %.1f lbs\n", p.TargetClass))
		sb.WriteString(fmt.Sprintf("- Weigh-in: %s\n", models.DateKey(p.WeighInDate)))
		sb.WriteString(fmt.Sprintf("- Protocol: %s\n\n", p.Protocol))
	}

	// Group by measurement type
	grouped := make(map[models.MeasurementType][]*models.WeightLog)
	for _, l := range logs {
		grouped[l.Type] = append(grouped[l.Type], l)
	}

	// Sort types for consistent output
	types := make([]models.MeasurementType, 0, len(grouped))
	for t := range grouped {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return string(types[i]) < string(types[j])
	})

	for _, t := range types {
		sb.WriteString(fmt.Sprintf("## %s\n\n", t))
		sb.WriteString("| Date | Weight | Notes |\n")
		sb.WriteString("|------|--------|-------|\n")
		for _, l := range grouped[t] {
			notes := ""
			if l.Notes != nil {
				notes = *l.Notes
			}
			sb.WriteString(fmt.Sprintf("| %s | %.1f lbs | %s |\n",
				l.RecordedAt.Format("2006-01-02 15:04"), l.Weight, notes))
		}
		sb.WriteString("\n")
	}

	if mt != nil {
		return sb.String(), nil
	}

	recs, err := d.ListTracking(ctx)
	if err == nil && len(recs) > 0 {
		sb.WriteString("## Tracking\n\n")
		sb.WriteString("| Date | Water | Carbs | Protein | Slices |\n")
		sb.WriteString("|------|-------|-------|---------|--------|\n")
		for _, rec := range recs {
			if since != nil && rec.Date < models.DateKey(*since) {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %.0f oz | %.0f g | %.0f g | %d |\n",
				rec.Date, rec.WaterOz, rec.CarbsG, rec.ProteinG, rec.Slices.Total()))
		}
	}

	return sb.String(), nil
}
