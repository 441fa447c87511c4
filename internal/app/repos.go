package app

import (
	"gorm.io/gorm"

	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/repos"
)

type Repos struct {
	Notes      repos.ClinicalNoteRepo
	Validation repos.NoteValidationLogRepo
	Checklist  repos.ChecklistItemRepo
	Signatures repos.SignatureEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos")
	return Repos{
		Notes:      repos.NewClinicalNoteRepo(db, log),
		Validation: repos.NewNoteValidationLogRepo(db, log),
		Checklist:  repos.NewChecklistItemRepo(db, log),
		Signatures: repos.NewSignatureEventRepo(db, log),
	}
}
