// ABOUTME: Repository interface for cut data storage.
// ABOUTME: Defines the contract for profile, weight log, and tracking operations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/snapshot"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousPrefix is returned when an ID prefix matches several records.
	ErrAmbiguousPrefix = errors.New("ambiguous prefix")
)

// LogFilter narrows ListLogs. Zero values mean no filter.
type LogFilter struct {
	Type  *models.MeasurementType
	Since *time.Time
	Until *time.Time
	Limit int
}

// Repository defines the storage interface for cut data.
type Repository interface {
	// Profile operations
	GetProfile(ctx context.Context) (*models.AthleteProfile, error)
	SaveProfile(ctx context.Context, p *models.AthleteProfile) error

	// Weight log operations
	CreateLog(ctx context.Context, l *models.WeightLog) error
	UpdateLog(ctx context.Context, l *models.WeightLog) error
	GetLog(ctx context.Context, idOrPrefix string) (*models.WeightLog, error)
	ListLogs(ctx context.Context, f LogFilter) ([]*models.WeightLog, error)
	DeleteLog(ctx context.Context, idOrPrefix string) error

	// Tracking operations
	GetTracking(ctx context.Context, date string) (*models.DailyTracking, error)
	SaveTracking(ctx context.Context, d *models.DailyTracking) error
	ListTracking(ctx context.Context) ([]*models.DailyTracking, error)

	// Snapshot plumbing
	snapshot.Persister
	LoadState(ctx context.Context) (snapshot.State, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) (*ImportSummary, error)

	// Lifecycle
	Close() error
}

var _ Repository = (*DB)(nil)
