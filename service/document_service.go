package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"github.com/Itish41/WorkflowPro/storage"
	"gorm.io/gorm"
)

// UploadFile is a file received by the transport layer, already checked
// for size and type.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadInput struct {
	File            *UploadFile
	TipoDocumentoID *int64
	CaricatoDaID    *int64
}

// DocumentService keeps each document row and its stored object in step:
// an object never outlives a failed insert, and a row is removed before
// its object.
type DocumentService struct {
	db     *gorm.DB
	store  storage.Store
	search *SearchService
	logger logging.Logger
	now    clock
}

func NewDocumentService(db *gorm.DB, store storage.Store, search *SearchService, logger logging.Logger) *DocumentService {
	return &DocumentService{db: db, store: store, search: search, logger: logger, now: defaultClock}
}

const documentSelect = `d.*, t.nome AS tipo_documento_nome, t.icona AS tipo_documento_icona,
	t.colore AS tipo_documento_colore, t.categoria AS tipo_documento_categoria`

func documentQuery(tx *gorm.DB) *gorm.DB {
	return tx.Table("documenti_lavorazione AS d").
		Select(documentSelect).
		Joins("LEFT JOIN tipi_documento t ON t.id = d.tipo_documento_id")
}

func findDocumentView(tx *gorm.DB, id int64) (*models.DocumentView, error) {
	var rows []models.DocumentView
	if err := documentQuery(tx).Where("d.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, Internal("Errore lettura documento", err)
	}
	if len(rows) == 0 {
		return nil, NotFound("Documento non trovato")
	}
	return &rows[0], nil
}

// Upload stores the file, then records it against the work item. Every
// failure after the object is written removes the object again.
func (s *DocumentService) Upload(ctx context.Context, workItemID int64, in UploadInput) (view *models.DocumentView, err error) {
	if in.File == nil || in.File.Body == nil {
		return nil, Validation("Nessun file caricato")
	}
	if in.TipoDocumentoID == nil {
		return nil, Validation("Tipo documento obbligatorio")
	}

	name := originalName(in.File.Name)
	key := storage.GenerateKey(name, s.now())
	obj, err := s.store.Put(ctx, key, in.File.Body, in.File.Size, in.File.ContentType)
	if err != nil {
		s.logger.Error(ctx, "[DocumentService.Upload] store failed", "key", key, "error", err)
		return nil, Internal("Errore salvataggio file", err)
	}
	defer func() {
		if err != nil {
			s.discardObject(ctx, key, err)
		}
	}()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.WorkItem
		if err := findOr404(tx, &item, workItemID, "Lavorazione non trovata"); err != nil {
			return err
		}
		var dt models.DocumentType
		if err := findOr404(tx, &dt, *in.TipoDocumentoID, "Tipo documento non trovato"); err != nil {
			return err
		}
		if err := ensureUserExists(tx, in.CaricatoDaID, "Utente caricamento non trovato"); err != nil {
			return err
		}

		doc := models.Document{
			LavorazioneID:   workItemID,
			TipoDocumentoID: in.TipoDocumentoID,
			NomeFile:        name,
			PathFile:        key,
			DimensioneBytes: obj.Size,
			MimeType:        in.File.ContentType,
			CaricatoDaID:    in.CaricatoDaID,
			DataCaricamento: s.now(),
		}
		if err := tx.Create(&doc).Error; err != nil {
			return classifyDBError(err, "", "Errore salvataggio documento")
		}
		var err error
		view, err = findDocumentView(tx, doc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "[DocumentService.Upload] document stored",
		"id", view.ID, "lavorazione_id", workItemID, "key", key, "size", obj.Size)
	if err := s.search.Index(ctx, *view); err != nil {
		s.logger.Warn(ctx, "[DocumentService.Upload] indexing failed", "id", view.ID, "error", err)
	}
	return view, nil
}

// discardObject runs detached from ctx so a canceled request still cleans up.
func (s *DocumentService) discardObject(ctx context.Context, key string, cause error) {
	if err := s.store.Remove(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn(ctx, "[DocumentService.Upload] cleanup failed, object left behind",
			"key", key, "cause", cause, "error", err)
		return
	}
	s.logger.Debug(ctx, "[DocumentService.Upload] object removed after failure", "key", key, "cause", cause)
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*models.DocumentView, error) {
	return findDocumentView(s.db.WithContext(ctx), id)
}

// ListByWorkItem returns the work item's documents, newest first,
// optionally narrowed to one document type.
func (s *DocumentService) ListByWorkItem(ctx context.Context, workItemID int64, typeID *int64) ([]models.DocumentView, error) {
	docs := []models.DocumentView{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.WorkItem
		if err := findOr404(tx, &item, workItemID, "Lavorazione non trovata"); err != nil {
			return err
		}
		q := documentQuery(tx).Where("d.lavorazione_id = ?", workItemID)
		if typeID != nil {
			q = q.Where("d.tipo_documento_id = ?", *typeID)
		}
		if err := q.Order("d.data_caricamento DESC").Order("d.id DESC").Scan(&docs).Error; err != nil {
			return Internal("Errore lettura documenti", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Download opens the stored object. The caller closes the reader.
func (s *DocumentService) Download(ctx context.Context, id int64) (*models.Document, io.ReadCloser, int64, error) {
	var doc models.Document
	if err := findOr404(s.db.WithContext(ctx), &doc, id, "Documento non trovato"); err != nil {
		return nil, nil, 0, err
	}
	rc, size, err := s.store.Open(ctx, doc.PathFile)
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.logger.Warn(ctx, "[DocumentService.Download] object missing", "id", id, "key", doc.PathFile)
		return nil, nil, 0, NotFound("File fisico non trovato")
	}
	if err != nil {
		return nil, nil, 0, Internal("Errore lettura file", err)
	}
	return &doc, rc, size, nil
}

// Delete removes the row first; a failure to remove the object afterwards
// is logged and the delete still succeeds.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	var doc models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &doc, id, "Documento non trovato"); err != nil {
			return err
		}
		if err := tx.Delete(&models.Document{}, id).Error; err != nil {
			return Internal("Errore eliminazione documento", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.store.Remove(context.WithoutCancel(ctx), doc.PathFile); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.logger.Warn(ctx, "[DocumentService.Delete] File fisico non trovato, record DB eliminato", "id", id, "key", doc.PathFile)
		} else {
			s.logger.Warn(ctx, "[DocumentService.Delete] object removal failed", "id", id, "key", doc.PathFile, "error", err)
		}
	}
	if err := s.search.Delete(ctx, id); err != nil {
		s.logger.Warn(ctx, "[DocumentService.Delete] de-indexing failed", "id", id, "error", err)
	}
	s.logger.Info(ctx, "[DocumentService.Delete] document deleted", "id", id)
	return nil
}

func (s *DocumentService) Search(ctx context.Context, query string) ([]models.SearchDocument, error) {
	return s.search.Search(ctx, query)
}

// originalName drops any client-side directory from the filename.
func originalName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
