package models

import "time"

// WorkItem is a tracked case ("lavorazione") owned by an optional assignee.
type WorkItem struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Numero      string `gorm:"column:numero;size:50" json:"numero"`
	Riferimento string `gorm:"column:riferimento;size:100" json:"riferimento"`
	Cliente     string `gorm:"column:cliente;size:200" json:"cliente"`
	Descrizione string `gorm:"column:descrizione;type:text" json:"descrizione"`

	// Stato and Priorita only ever receive values from the closed sets when
	// written through the API; legacy rows are read back verbatim.
	Stato    WorkItemStatus `gorm:"column:stato;size:30;not null;index" json:"stato"`
	Priorita Priority       `gorm:"column:priorita;size:20;not null" json:"priorita"`

	// AssegnatoA references users.id and is nulled when the user is deleted.
	AssegnatoA *int64 `gorm:"column:assegnato_a;index" json:"assegnatoA"`

	DataCreazione time.Time  `gorm:"column:data_creazione;not null;index" json:"dataCreazione"`
	DataScadenza  *time.Time `gorm:"column:data_scadenza" json:"dataScadenza"`

	// DataCompletamento is stamped on the transition to completata and never cleared.
	DataCompletamento *time.Time `gorm:"column:data_completamento" json:"dataCompletamento"`
}

func (WorkItem) TableName() string { return "lavorazioni" }

// WorkItemView is a WorkItem annotated with data from joined tables.
type WorkItemView struct {
	WorkItem
	AssegnatoNome *string `gorm:"column:assegnato_nome" json:"assegnatoNome"`
	NumDocumenti  int64   `gorm:"column:num_documenti" json:"numDocumenti"`
}

// WorkItemDetail is a single work item with its attached documents.
// Documenti is never nil.
type WorkItemDetail struct {
	WorkItemView
	Documenti []DocumentView `json:"documenti"`
}

// WorkItemFilter narrows a work item listing. Zero fields are ignored.
type WorkItemFilter struct {
	Stato      WorkItemStatus
	DataInizio *time.Time
	DataFine   *time.Time
}
