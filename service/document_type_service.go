package services

import (
	"context"
	"strings"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"gorm.io/gorm"
)

type DocumentTypeInput struct {
	Nome        string `json:"nome"`
	Descrizione string `json:"descrizione"`
	Categoria   string `json:"categoria"`
	Icona       string `json:"icona"`
	Colore      string `json:"colore"`
	Ordine      *int   `json:"ordine"`
	Attivo      *bool  `json:"attivo"`
}

// DocumentTypeService is the registry of document types. Types are never
// hard-deleted, only deactivated.
type DocumentTypeService struct {
	db     *gorm.DB
	logger logging.Logger
	now    clock
}

func NewDocumentTypeService(db *gorm.DB, logger logging.Logger) *DocumentTypeService {
	return &DocumentTypeService{db: db, logger: logger, now: defaultClock}
}

// List returns active types ordered for display.
func (s *DocumentTypeService) List(ctx context.Context) ([]models.DocumentType, error) {
	types := []models.DocumentType{}
	err := s.db.WithContext(ctx).
		Where("attivo = ?", true).
		Order("ordine").Order("nome").
		Find(&types).Error
	if err != nil {
		return nil, Internal("Errore lettura tipi documento", err)
	}
	return types, nil
}

// Get also returns inactive types, documents may still point at them.
func (s *DocumentTypeService) Get(ctx context.Context, id int64) (*models.DocumentType, error) {
	var dt models.DocumentType
	if err := findOr404(s.db.WithContext(ctx), &dt, id, "Tipo documento non trovato"); err != nil {
		return nil, err
	}
	return &dt, nil
}

func (s *DocumentTypeService) Categories() []string {
	return models.DocumentCategories()
}

func (s *DocumentTypeService) Create(ctx context.Context, in DocumentTypeInput) (*models.DocumentType, error) {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return nil, Validation("Nome tipo documento obbligatorio")
	}

	now := s.now()
	dt := models.DocumentType{
		Nome:          nome,
		Descrizione:   in.Descrizione,
		Categoria:     strings.TrimSpace(in.Categoria),
		Icona:         stringOr(in.Icona, models.DefaultDocumentTypeIcon),
		Colore:        stringOr(in.Colore, models.DefaultDocumentTypeColor),
		Attivo:        true,
		DataCreazione: now,
		DataModifica:  now,
	}
	if in.Ordine != nil {
		dt.Ordine = *in.Ordine
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dt).Error; err != nil {
			return classifyDBError(err, "Tipo documento già esistente", "Errore creazione tipo documento")
		}
		return findOr404(tx, &dt, dt.ID, "Tipo documento non trovato")
	})
	if err != nil {
		s.logger.Warn(ctx, "[DocumentTypeService.Create] failed", "nome", nome, "error", err)
		return nil, err
	}
	s.logger.Info(ctx, "[DocumentTypeService.Create] document type created", "id", dt.ID, "nome", dt.Nome)
	return &dt, nil
}

// Update overwrites every field. Omitted attivo reactivates the type.
func (s *DocumentTypeService) Update(ctx context.Context, id int64, in DocumentTypeInput) (*models.DocumentType, error) {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return nil, Validation("Nome tipo documento obbligatorio")
	}
	ordine := 0
	if in.Ordine != nil {
		ordine = *in.Ordine
	}

	var dt models.DocumentType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &dt, id, "Tipo documento non trovato"); err != nil {
			return err
		}
		err := tx.Model(&models.DocumentType{ID: id}).Updates(map[string]any{
			"nome":          nome,
			"descrizione":   in.Descrizione,
			"categoria":     strings.TrimSpace(in.Categoria),
			"icona":         stringOr(in.Icona, models.DefaultDocumentTypeIcon),
			"colore":        stringOr(in.Colore, models.DefaultDocumentTypeColor),
			"ordine":        ordine,
			"attivo":        boolOr(in.Attivo, true),
			"data_modifica": s.now(),
		}).Error
		if err != nil {
			return classifyDBError(err, "Tipo documento già esistente", "Errore aggiornamento tipo documento")
		}
		dt = models.DocumentType{}
		return findOr404(tx, &dt, id, "Tipo documento non trovato")
	})
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// Deactivate soft-deletes the type unless documents still reference it.
func (s *DocumentTypeService) Deactivate(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dt models.DocumentType
		if err := findOr404(tx, &dt, id, "Tipo documento non trovato"); err != nil {
			return err
		}
		if err := applyReferencePolicy(tx, dt.TableName(), id); err != nil {
			return err
		}
		err := tx.Model(&models.DocumentType{ID: id}).Updates(map[string]any{
			"attivo":        false,
			"data_modifica": s.now(),
		}).Error
		if err != nil {
			return Internal("Errore disattivazione tipo documento", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "[DocumentTypeService.Deactivate] document type deactivated", "id", id)
	return nil
}
