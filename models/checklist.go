package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultChecklistVersion = "1.0"

// Checklist is a reusable template of review questions.
type Checklist struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome          string    `gorm:"column:nome;size:200;not null" json:"nome"`
	Descrizione   string    `gorm:"column:descrizione;type:text" json:"descrizione"`
	Versione      string    `gorm:"column:versione;size:20" json:"versione"`
	Attiva        bool      `gorm:"column:attiva;not null" json:"attiva"`
	CreatoDaID    *int64    `gorm:"column:creato_da_id;index" json:"creato_da_id"`
	DataCreazione time.Time `gorm:"column:data_creazione;not null" json:"data_creazione"`
	DataModifica  time.Time `gorm:"column:data_modifica;not null" json:"data_modifica"`
}

func (Checklist) TableName() string { return "checklist" }

type ChecklistSummary struct {
	Checklist
	NumDomande int64 `gorm:"column:num_domande" json:"num_domande"`
}

// ChecklistQuestion belongs to exactly one Checklist and is deleted with it.
type ChecklistQuestion struct {
	ID           int64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChecklistID  int64        `gorm:"column:checklist_id;not null;index" json:"checklist_id"`
	Ordine       int          `gorm:"column:ordine;not null" json:"ordine"`
	Domanda      string       `gorm:"column:domanda;type:text;not null" json:"domanda"`
	Descrizione  string       `gorm:"column:descrizione;type:text" json:"descrizione"`
	TipoRisposta ResponseType `gorm:"column:tipo_risposta;size:50;not null" json:"tipo_risposta"`
	PromptAI     string       `gorm:"column:prompt_ai;type:text" json:"prompt_ai"`

	// DocumentiRichiesti is always a JSON array of strings.
	DocumentiRichiesti datatypes.JSON `gorm:"column:documenti_richiesti" json:"documenti_richiesti"`

	Obbligatoria bool `gorm:"column:obbligatoria;not null" json:"obbligatoria"`
}

func (ChecklistQuestion) TableName() string { return "checklist_domande" }
