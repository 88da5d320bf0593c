package models

import "time"

// Document is an uploaded file attached to a work item. Every row owns
// exactly one object in the configured store, addressed by PathFile.
type Document struct {
	ID            int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LavorazioneID int64 `gorm:"column:lavorazione_id;not null;index" json:"lavorazione_id"`

	// TipoDocumentoID is required on upload but nullable in the schema.
	TipoDocumentoID *int64 `gorm:"column:tipo_documento_id;index" json:"tipo_documento_id"`

	// NomeFile is the client-side filename, used again on download.
	NomeFile string `gorm:"column:nome_file;size:255;not null" json:"nome_file"`

	// PathFile is the storage key, never a filesystem path supplied by the client.
	PathFile string `gorm:"column:path_file;size:500;not null" json:"path_file"`

	DimensioneBytes int64     `gorm:"column:dimensione_bytes" json:"dimensione_bytes"`
	MimeType        string    `gorm:"column:mime_type;size:100" json:"mime_type"`
	CaricatoDaID    *int64    `gorm:"column:caricato_da_id;index" json:"caricato_da_id"`
	DataCaricamento time.Time `gorm:"column:data_caricamento;not null;index" json:"data_caricamento"`
}

func (Document) TableName() string { return "documenti_lavorazione" }

// DocumentView is a Document joined with its type's display metadata.
type DocumentView struct {
	Document
	TipoDocumentoNome      *string `gorm:"column:tipo_documento_nome" json:"tipo_documento_nome"`
	TipoDocumentoIcona     *string `gorm:"column:tipo_documento_icona" json:"tipo_documento_icona"`
	TipoDocumentoColore    *string `gorm:"column:tipo_documento_colore" json:"tipo_documento_colore"`
	TipoDocumentoCategoria *string `gorm:"column:tipo_documento_categoria" json:"tipo_documento_categoria"`
}

// SearchDocument is the shape of a document in the search index.
// The elastic tags drive the index mapping.
type SearchDocument struct {
	ID                int64     `json:"id" elastic:"type:long"`
	LavorazioneID     int64     `json:"lavorazione_id" elastic:"type:long"`
	NomeFile          string    `json:"nome_file" elastic:"type:text,analyzer:standard"`
	MimeType          string    `json:"mime_type" elastic:"type:keyword"`
	TipoDocumentoNome string    `json:"tipo_documento_nome" elastic:"type:text,analyzer:standard"`
	DataCaricamento   time.Time `json:"data_caricamento" elastic:"type:date"`
}

// NewSearchDocument flattens a DocumentView into its indexed form.
func NewSearchDocument(d DocumentView) SearchDocument {
	sd := SearchDocument{
		ID:              d.ID,
		LavorazioneID:   d.LavorazioneID,
		NomeFile:        d.NomeFile,
		MimeType:        d.MimeType,
		DataCaricamento: d.DataCaricamento,
	}
	if d.TipoDocumentoNome != nil {
		sd.TipoDocumentoNome = *d.TipoDocumentoNome
	}
	return sd
}
