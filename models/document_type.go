package models

import "time"

const (
	DefaultDocumentTypeIcon  = "insert_drive_file"
	DefaultDocumentTypeColor = "grey"
)

// DocumentType classifies uploaded files and carries their display metadata.
type DocumentType struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nome          string    `gorm:"column:nome;size:100;not null;uniqueIndex" json:"nome"`
	Descrizione   string    `gorm:"column:descrizione;type:text" json:"descrizione"`
	Categoria     string    `gorm:"column:categoria;size:50" json:"categoria"`
	Icona         string    `gorm:"column:icona;size:50" json:"icona"`
	Colore        string    `gorm:"column:colore;size:30" json:"colore"`
	Ordine        int       `gorm:"column:ordine" json:"ordine"`
	Attivo        bool      `gorm:"column:attivo;not null" json:"attivo"`
	DataCreazione time.Time `gorm:"column:data_creazione;not null" json:"data_creazione"`
	DataModifica  time.Time `gorm:"column:data_modifica;not null" json:"data_modifica"`
}

func (DocumentType) TableName() string { return "tipi_documento" }

var documentCategories = []string{
	"Identità",
	"Finanziario",
	"Amministrativo",
	"Residenza",
	"Reddito",
	"Certificati",
	"Visure",
	"Altro",
}

// DocumentCategories returns the suggested categories. Categoria stays an
// open string, these are only offered to clients.
func DocumentCategories() []string {
	return append([]string(nil), documentCategories...)
}
