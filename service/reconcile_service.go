package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"github.com/Itish41/WorkflowPro/storage"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultOrphanGrace leaves recent objects alone: an upload writes its
// object before the row is committed.
const DefaultOrphanGrace = 15 * time.Minute

type MissingFile struct {
	DocumentID    int64  `json:"documentId"`
	LavorazioneID int64  `json:"lavorazioneId"`
	PathFile      string `json:"pathFile"`
}

type OrphanReport struct {
	CheckedAt    time.Time     `json:"checkedAt"`
	OrphanFiles  []string      `json:"orphanFiles"`
	MissingFiles []MissingFile `json:"missingFiles"`
	Removed      []string      `json:"removed"`
}

// ReconcileService compares the store with the documents table.
type ReconcileService struct {
	db     *gorm.DB
	store  storage.Store
	logger logging.Logger
	grace  time.Duration
	now    clock
}

func NewReconcileService(db *gorm.DB, store storage.Store, logger logging.Logger) *ReconcileService {
	return &ReconcileService{db: db, store: store, logger: logger, grace: DefaultOrphanGrace, now: defaultClock}
}

// Reconcile reports objects without a row and rows without an object.
// With remove set, orphan objects are deleted.
func (s *ReconcileService) Reconcile(ctx context.Context, remove bool) (*OrphanReport, error) {
	objects, err := s.store.List(ctx)
	if err != nil {
		return nil, Internal("Errore lettura archivio file", err)
	}

	var docs []models.Document
	if err := s.db.WithContext(ctx).Select("id", "lavorazione_id", "path_file").Find(&docs).Error; err != nil {
		return nil, Internal("Errore lettura documenti", err)
	}

	now := s.now()
	report := &OrphanReport{
		CheckedAt:    now,
		OrphanFiles:  []string{},
		MissingFiles: []MissingFile{},
		Removed:      []string{},
	}

	stored := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		stored[obj.Key] = struct{}{}
	}
	referenced := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		referenced[d.PathFile] = struct{}{}
		if _, ok := stored[d.PathFile]; !ok {
			report.MissingFiles = append(report.MissingFiles, MissingFile{
				DocumentID: d.ID, LavorazioneID: d.LavorazioneID, PathFile: d.PathFile,
			})
		}
	}

	for _, obj := range objects {
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if created, ok := storage.KeyTime(obj.Key); ok && now.Sub(created) < s.grace {
			continue
		}
		report.OrphanFiles = append(report.OrphanFiles, obj.Key)
		if !remove {
			continue
		}
		if err := s.store.Remove(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn(ctx, "[ReconcileService.Reconcile] orphan removal failed", "key", obj.Key, "error", err)
			continue
		}
		report.Removed = append(report.Removed, obj.Key)
	}

	s.logger.Info(ctx, "[ReconcileService.Reconcile] done",
		"objects", len(objects), "documents", len(docs),
		"orphans", len(report.OrphanFiles), "missing", len(report.MissingFiles), "removed", len(report.Removed))
	return report, nil
}

// Schedule starts a cron job that removes orphans on the given cron
// expression. The caller stops the returned scheduler.
func (s *ReconcileService) Schedule(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Reconcile(ctx, true); err != nil {
			s.logger.Error(ctx, "[ReconcileService.Schedule] sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid orphan sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.logger.Info(context.Background(), "[ReconcileService.Schedule] orphan sweep scheduled", "schedule", schedule)
	return c, nil
}
