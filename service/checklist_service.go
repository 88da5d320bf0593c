package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChecklistInput struct {
	Nome        string     `json:"nome"`
	Descrizione string     `json:"descrizione"`
	Versione    string     `json:"versione"`
	Attiva      *bool      `json:"attiva"`
	CreatoDaID  OptionalID `json:"creato_da_id"`
}

type QuestionInput struct {
	Ordine       *int   `json:"ordine"`
	Domanda      string `json:"domanda"`
	Descrizione  string `json:"descrizione"`
	TipoRisposta string `json:"tipo_risposta"`
	PromptAI     string `json:"prompt_ai"`

	// DocumentiRichiesti may be a list, a JSON-encoded list or a
	// comma-separated string.
	DocumentiRichiesti json.RawMessage `json:"documenti_richiesti"`

	Obbligatoria *bool `json:"obbligatoria"`
}

// ChecklistService manages checklist templates and their ordered questions.
type ChecklistService struct {
	db     *gorm.DB
	logger logging.Logger
	now    clock
}

func NewChecklistService(db *gorm.DB, logger logging.Logger) *ChecklistService {
	return &ChecklistService{db: db, logger: logger, now: defaultClock}
}

func (s *ChecklistService) List(ctx context.Context) ([]models.ChecklistSummary, error) {
	list := []models.ChecklistSummary{}
	err := s.db.WithContext(ctx).
		Table("checklist AS c").
		Select("c.*, (SELECT COUNT(*) FROM checklist_domande q WHERE q.checklist_id = c.id) AS num_domande").
		Order("c.data_creazione DESC").Order("c.id DESC").
		Scan(&list).Error
	if err != nil {
		return nil, Internal("Errore lettura checklist", err)
	}
	return list, nil
}

func (s *ChecklistService) Get(ctx context.Context, id int64) (*models.Checklist, error) {
	var c models.Checklist
	if err := findOr404(s.db.WithContext(ctx), &c, id, "Checklist non trovata"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChecklistService) Create(ctx context.Context, in ChecklistInput) (*models.Checklist, error) {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return nil, Validation("Nome checklist obbligatorio")
	}

	now := s.now()
	c := models.Checklist{
		Nome:          nome,
		Descrizione:   in.Descrizione,
		Versione:      stringOr(in.Versione, models.DefaultChecklistVersion),
		Attiva:        boolOr(in.Attiva, true),
		CreatoDaID:    in.CreatoDaID.ID,
		DataCreazione: now,
		DataModifica:  now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUserExists(tx, c.CreatoDaID, "Utente creatore non trovato"); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			return classifyDBError(err, "", "Errore creazione checklist")
		}
		return findOr404(tx, &c, c.ID, "Checklist non trovata")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "[ChecklistService.Create] checklist created", "id", c.ID, "nome", c.Nome)
	return &c, nil
}

// Update overwrites the template fields. Omitted attiva keeps the stored flag.
func (s *ChecklistService) Update(ctx context.Context, id int64, in ChecklistInput) (*models.Checklist, error) {
	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		return nil, Validation("Nome checklist obbligatorio")
	}

	var c models.Checklist
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &c, id, "Checklist non trovata"); err != nil {
			return err
		}
		err := tx.Model(&models.Checklist{ID: id}).Updates(map[string]any{
			"nome":          nome,
			"descrizione":   in.Descrizione,
			"versione":      stringOr(in.Versione, models.DefaultChecklistVersion),
			"attiva":        boolOr(in.Attiva, c.Attiva),
			"data_modifica": s.now(),
		}).Error
		if err != nil {
			return Internal("Errore aggiornamento checklist", err)
		}
		c = models.Checklist{}
		return findOr404(tx, &c, id, "Checklist non trovata")
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the template and its questions.
func (s *ChecklistService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Checklist
		if err := findOr404(tx, &c, id, "Checklist non trovata"); err != nil {
			return err
		}
		if err := applyReferencePolicy(tx, c.TableName(), id); err != nil {
			return err
		}
		if err := tx.Delete(&models.Checklist{}, id).Error; err != nil {
			return Internal("Errore eliminazione checklist", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "[ChecklistService.Delete] checklist deleted", "id", id)
	return nil
}

func (s *ChecklistService) ListQuestions(ctx context.Context, checklistID int64) ([]models.ChecklistQuestion, error) {
	questions := []models.ChecklistQuestion{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Checklist
		if err := findOr404(tx, &c, checklistID, "Checklist non trovata"); err != nil {
			return err
		}
		if err := tx.Where("checklist_id = ?", checklistID).Order("ordine").Order("id").Find(&questions).Error; err != nil {
			return Internal("Errore lettura domande", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateQuestion appends after the last question when no order is given.
func (s *ChecklistService) CreateQuestion(ctx context.Context, checklistID int64, in QuestionInput) (*models.ChecklistQuestion, error) {
	q, err := buildQuestion(in, "")
	if err != nil {
		return nil, err
	}
	q.ChecklistID = checklistID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Checklist
		if err := findOr404(tx, &c, checklistID, "Checklist non trovata"); err != nil {
			return err
		}
		if q.Ordine == 0 {
			var last int
			err := tx.Model(&models.ChecklistQuestion{}).
				Select("COALESCE(MAX(ordine), 0)").
				Where("checklist_id = ?", checklistID).
				Scan(&last).Error
			if err != nil {
				return Internal("Errore calcolo ordine", err)
			}
			q.Ordine = last + 1
		}
		if err := tx.Create(&q).Error; err != nil {
			return classifyDBError(err, "", "Errore creazione domanda")
		}
		return findOr404(tx, &q, q.ID, "Domanda non trovata")
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion overwrites the question. Omitted ordine or tipo_risposta
// keep the stored values.
func (s *ChecklistService) UpdateQuestion(ctx context.Context, id int64, in QuestionInput) (*models.ChecklistQuestion, error) {
	var q models.ChecklistQuestion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &q, id, "Domanda non trovata"); err != nil {
			return err
		}
		next, err := buildQuestion(in, q.TipoRisposta)
		if err != nil {
			return err
		}
		if next.Ordine == 0 {
			next.Ordine = q.Ordine
		}
		err = tx.Model(&models.ChecklistQuestion{ID: id}).Updates(map[string]any{
			"ordine":              next.Ordine,
			"domanda":             next.Domanda,
			"descrizione":         next.Descrizione,
			"tipo_risposta":       next.TipoRisposta,
			"prompt_ai":           next.PromptAI,
			"documenti_richiesti": next.DocumentiRichiesti,
			"obbligatoria":        next.Obbligatoria,
		}).Error
		if err != nil {
			return Internal("Errore aggiornamento domanda", err)
		}
		q = models.ChecklistQuestion{}
		return findOr404(tx, &q, id, "Domanda non trovata")
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *ChecklistService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.ChecklistQuestion
		if err := findOr404(tx, &q, id, "Domanda non trovata"); err != nil {
			return err
		}
		if err := tx.Delete(&models.ChecklistQuestion{}, id).Error; err != nil {
			return Internal("Errore eliminazione domanda", err)
		}
		return nil
	})
}

// buildQuestion validates in. An empty tipo_risposta falls back to current,
// or to the default response type when current is empty too.
func buildQuestion(in QuestionInput, current models.ResponseType) (models.ChecklistQuestion, error) {
	domanda := strings.TrimSpace(in.Domanda)
	if domanda == "" {
		return models.ChecklistQuestion{}, Validation("Testo domanda obbligatorio")
	}

	tipo := current
	if tipo == "" {
		tipo = models.ResponseCompliance
	}
	if strings.TrimSpace(in.TipoRisposta) != "" {
		parsed, err := models.ParseResponseType(in.TipoRisposta)
		if err != nil {
			return models.ChecklistQuestion{}, Validation("Tipo risposta non valido")
		}
		tipo = parsed
	}

	docs, err := normalizeRequiredDocuments(in.DocumentiRichiesti)
	if err != nil {
		return models.ChecklistQuestion{}, err
	}

	q := models.ChecklistQuestion{
		Domanda:            domanda,
		Descrizione:        in.Descrizione,
		TipoRisposta:       tipo,
		PromptAI:           in.PromptAI,
		DocumentiRichiesti: docs,
		Obbligatoria:       boolOr(in.Obbligatoria, true),
	}
	if in.Ordine != nil && *in.Ordine > 0 {
		q.Ordine = *in.Ordine
	}
	return q, nil
}

// normalizeRequiredDocuments always yields a JSON array of strings.
func normalizeRequiredDocuments(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return encodeDocumentList(nil)
	}

	switch raw[0] {
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, Validation("documenti_richiesti deve essere una lista di testi")
		}
		return encodeDocumentList(list)
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, Validation("documenti_richiesti non valido")
		}
		text = strings.TrimSpace(text)
		if strings.HasPrefix(text, "[") {
			var list []string
			if err := json.Unmarshal([]byte(text), &list); err == nil {
				return encodeDocumentList(list)
			}
		}
		return encodeDocumentList(strings.Split(text, ","))
	default:
		return nil, Validation("documenti_richiesti deve essere una lista di testi")
	}
}

func encodeDocumentList(list []string) (datatypes.JSON, error) {
	clean := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			clean = append(clean, item)
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, Internal("Errore codifica documenti richiesti", err)
	}
	return datatypes.JSON(b), nil
}
