package services

import (
	"context"
	"strings"
	"time"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"gorm.io/gorm"
)

// WorkItemInput carries the editable fields of a work item.
type WorkItemInput struct {
	Numero       string     `json:"numero"`
	Riferimento  string     `json:"riferimento"`
	Cliente      string     `json:"cliente"`
	Descrizione  string     `json:"descrizione"`
	Stato        string     `json:"stato"`
	Priorita     string     `json:"priorita"`
	AssegnatoA   OptionalID `json:"assegnatoA"`
	DataScadenza *string    `json:"dataScadenza"`
}

// WorkItemService manages work items and their status lifecycle.
type WorkItemService struct {
	db     *gorm.DB
	logger logging.Logger
	now    clock
}

func NewWorkItemService(db *gorm.DB, logger logging.Logger) *WorkItemService {
	return &WorkItemService{db: db, logger: logger, now: defaultClock}
}

const workItemSelect = `l.*, u.full_name AS assegnato_nome,
	(SELECT COUNT(*) FROM documenti_lavorazione d WHERE d.lavorazione_id = l.id) AS num_documenti`

func workItemQuery(tx *gorm.DB) *gorm.DB {
	return tx.Table("lavorazioni AS l").
		Select(workItemSelect).
		Joins("LEFT JOIN users u ON u.id = l.assegnato_a")
}

func (s *WorkItemService) List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemView, error) {
	q := workItemQuery(s.db.WithContext(ctx))
	if filter.Stato != "" {
		q = q.Where("l.stato = ?", filter.Stato)
	}
	if filter.DataInizio != nil {
		q = q.Where("l.data_creazione >= ?", *filter.DataInizio)
	}
	if filter.DataFine != nil {
		q = q.Where("l.data_creazione <= ?", *filter.DataFine)
	}

	items := []models.WorkItemView{}
	if err := q.Order("l.data_creazione DESC").Order("l.id DESC").Scan(&items).Error; err != nil {
		s.logger.Error(ctx, "[WorkItemService.List] query failed", "error", err)
		return nil, Internal("Errore lettura lavorazioni", err)
	}
	return items, nil
}

// Get returns the work item with its documents, newest upload first.
func (s *WorkItemService) Get(ctx context.Context, id int64) (*models.WorkItemDetail, error) {
	var detail *models.WorkItemDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		view, err := findWorkItemView(tx, id)
		if err != nil {
			return err
		}
		docs := []models.DocumentView{}
		if err := documentQuery(tx).
			Where("d.lavorazione_id = ?", id).
			Order("d.data_caricamento DESC").Order("d.id DESC").
			Scan(&docs).Error; err != nil {
			return Internal("Errore lettura documenti", err)
		}
		detail = &models.WorkItemDetail{WorkItemView: *view, Documenti: docs}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *WorkItemService) Create(ctx context.Context, in WorkItemInput) (*models.WorkItemView, error) {
	if strings.TrimSpace(in.Numero) == "" && strings.TrimSpace(in.Cliente) == "" {
		return nil, Validation("Numero o cliente obbligatorio")
	}
	stato, err := parseStatus(in.Stato, models.StatusPending)
	if err != nil {
		return nil, err
	}
	priorita, err := parsePriority(in.Priorita, models.PriorityMedium)
	if err != nil {
		return nil, err
	}
	scadenza, err := parseOptionalDate(in.DataScadenza, "dataScadenza")
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := models.WorkItem{
		Numero:        strings.TrimSpace(in.Numero),
		Riferimento:   strings.TrimSpace(in.Riferimento),
		Cliente:       strings.TrimSpace(in.Cliente),
		Descrizione:   in.Descrizione,
		Stato:         stato,
		Priorita:      priorita,
		AssegnatoA:    in.AssegnatoA.ID,
		DataCreazione: now,
		DataScadenza:  scadenza,
	}
	item.DataCompletamento = completionStamp(models.WorkItem{}, stato, now)

	var view *models.WorkItemView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, item.AssegnatoA, "Utente assegnato non trovato"); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return classifyDBError(err, "", "Errore creazione lavorazione")
		}
		var err error
		view, err = findWorkItemView(tx, item.ID)
		return err
	})
	if err != nil {
		s.logger.Warn(ctx, "[WorkItemService.Create] failed", "error", err)
		return nil, err
	}
	s.logger.Info(ctx, "[WorkItemService.Create] work item created", "id", view.ID, "stato", view.Stato)
	return view, nil
}

// Update overwrites every editable field. An empty stato or priorita keeps
// the stored value. The completion date is left to UpdateStatus.
func (s *WorkItemService) Update(ctx context.Context, id int64, in WorkItemInput) (*models.WorkItemView, error) {
	scadenza, err := parseOptionalDate(in.DataScadenza, "dataScadenza")
	if err != nil {
		return nil, err
	}

	var view *models.WorkItemView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WorkItem
		if err := findOr404(tx, &existing, id, "Lavorazione non trovata"); err != nil {
			return err
		}
		stato, err := parseStatus(in.Stato, existing.Stato)
		if err != nil {
			return err
		}
		priorita, err := parsePriority(in.Priorita, existing.Priorita)
		if err != nil {
			return err
		}
		if err := ensureUserExists(tx, in.AssegnatoA.ID, "Utente assegnato non trovato"); err != nil {
			return err
		}

		updates := map[string]any{
			"numero":        strings.TrimSpace(in.Numero),
			"riferimento":   strings.TrimSpace(in.Riferimento),
			"cliente":       strings.TrimSpace(in.Cliente),
			"descrizione":   in.Descrizione,
			"stato":         stato,
			"priorita":      priorita,
			"assegnato_a":   in.AssegnatoA.ID,
			"data_scadenza": scadenza,
		}
		if err := tx.Model(&models.WorkItem{ID: id}).Updates(updates).Error; err != nil {
			return classifyDBError(err, "", "Errore aggiornamento lavorazione")
		}
		view, err = findWorkItemView(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateStatus changes only the status. Reaching completata stamps the
// completion date; leaving it keeps the stamp.
func (s *WorkItemService) UpdateStatus(ctx context.Context, id int64, raw string) (*models.WorkItemView, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, Validation("Stato obbligatorio")
	}
	stato, err := models.ParseWorkItemStatus(raw)
	if err != nil {
		return nil, Validation("Stato non valido")
	}

	var (
		view     *models.WorkItemView
		previous models.WorkItemStatus
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WorkItem
		if err := findOr404(tx, &existing, id, "Lavorazione non trovata"); err != nil {
			return err
		}
		previous = existing.Stato
		updates := map[string]any{"stato": stato}
		if stamp := completionStamp(existing, stato, s.now()); stamp != nil {
			updates["data_completamento"] = stamp
		}
		if err := tx.Model(&models.WorkItem{ID: id}).Updates(updates).Error; err != nil {
			return Internal("Errore aggiornamento stato", err)
		}
		var err error
		view, err = findWorkItemView(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "[WorkItemService.UpdateStatus] status changed",
		"id", id, "from", previous, "to", stato)
	return view, nil
}

// Delete is refused while documents are attached.
func (s *WorkItemService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WorkItem
		if err := findOr404(tx, &existing, id, "Lavorazione non trovata"); err != nil {
			return err
		}
		if err := applyReferencePolicy(tx, existing.TableName(), id); err != nil {
			return err
		}
		if err := tx.Delete(&models.WorkItem{}, id).Error; err != nil {
			return Internal("Errore eliminazione lavorazione", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "[WorkItemService.Delete] work item deleted", "id", id)
	return nil
}

func findWorkItemView(tx *gorm.DB, id int64) (*models.WorkItemView, error) {
	var rows []models.WorkItemView
	if err := workItemQuery(tx).Where("l.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, Internal("Errore lettura lavorazione", err)
	}
	if len(rows) == 0 {
		return nil, NotFound("Lavorazione non trovata")
	}
	return &rows[0], nil
}

// completionStamp returns the completion date to store when moving current
// to next, or nil when the stored value must stay as it is.
func completionStamp(current models.WorkItem, next models.WorkItemStatus, now time.Time) *time.Time {
	if next != models.StatusCompleted {
		return nil
	}
	if current.Stato == models.StatusCompleted && current.DataCompletamento != nil {
		return nil
	}
	return &now
}

func parseStatus(raw string, def models.WorkItemStatus) (models.WorkItemStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	st, err := models.ParseWorkItemStatus(raw)
	if err != nil {
		return "", Validation("Stato non valido")
	}
	return st, nil
}

func parsePriority(raw string, def models.Priority) (models.Priority, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	p, err := models.ParsePriority(raw)
	if err != nil {
		return "", Validation("Priorità non valida")
	}
	return p, nil
}
