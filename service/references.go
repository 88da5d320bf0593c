package services

import (
	"fmt"

	"gorm.io/gorm"
)

type referenceMode int

const (
	// refBlock refuses the delete while referencing rows exist.
	refBlock referenceMode = iota
	// refCascade deletes the referencing rows together with the target.
	refCascade
	// refNullify clears the referencing column.
	refNullify
)

type reference struct {
	table  string
	column string
	mode   referenceMode

	// used by refBlock only
	message string
	detail  string
}

// referencePolicy lists every inbound reference by target table. Each delete
// path runs applyReferencePolicy inside its transaction before removing the row.
var referencePolicy = map[string][]reference{
	"lavorazioni": {
		{
			table: "documenti_lavorazione", column: "lavorazione_id", mode: refBlock,
			message: "Impossibile eliminare: lavorazione con documenti associati", detail: "documenti",
		},
	},
	"tipi_documento": {
		{
			table: "documenti_lavorazione", column: "tipo_documento_id", mode: refBlock,
			message: "Impossibile eliminare: tipo documento in uso", detail: "documenti_associati",
		},
	},
	"checklist": {
		{table: "checklist_domande", column: "checklist_id", mode: refCascade},
	},
	"users": {
		{table: "lavorazioni", column: "assegnato_a", mode: refNullify},
		{table: "documenti_lavorazione", column: "caricato_da_id", mode: refNullify},
		{table: "checklist", column: "creato_da_id", mode: refNullify},
	},
}

func applyReferencePolicy(tx *gorm.DB, target string, id int64) error {
	refs := referencePolicy[target]

	// guards run before any cascade so a refused delete modifies nothing
	for _, ref := range refs {
		if ref.mode != refBlock {
			continue
		}
		var n int64
		if err := tx.Table(ref.table).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
			return Internal("Errore verifica riferimenti", fmt.Errorf("count %s.%s: %w", ref.table, ref.column, err))
		}
		if n > 0 {
			return Conflict(ref.message, map[string]any{ref.detail: n})
		}
	}

	for _, ref := range refs {
		var err error
		switch ref.mode {
		case refCascade:
			err = tx.Exec("DELETE FROM "+ref.table+" WHERE "+ref.column+" = ?", id).Error
		case refNullify:
			err = tx.Exec("UPDATE "+ref.table+" SET "+ref.column+" = NULL WHERE "+ref.column+" = ?", id).Error
		default:
			continue
		}
		if err != nil {
			return Internal("Errore aggiornamento riferimenti", fmt.Errorf("%s.%s: %w", ref.table, ref.column, err))
		}
	}
	return nil
}
