package services

import (
	"context"
	"strings"

	"github.com/Itish41/WorkflowPro/logging"
	"github.com/Itish41/WorkflowPro/models"
	"gorm.io/gorm"
)

type UserInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

type UserService struct {
	db     *gorm.DB
	logger logging.Logger
	now    clock
}

func NewUserService(db *gorm.DB, logger logging.Logger) *UserService {
	return &UserService{db: db, logger: logger, now: defaultClock}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("full_name").Order("id").Find(&users).Error; err != nil {
		return nil, Internal("Errore lettura utenti", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := findOr404(s.db.WithContext(ctx), &u, id, "Utente non trovato"); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	fullName, email := strings.TrimSpace(in.FullName), strings.TrimSpace(in.Email)
	if fullName == "" || email == "" {
		return nil, Validation("Nome completo e email obbligatori")
	}

	u := models.User{
		Email:     email,
		FullName:  fullName,
		Role:      stringOr(in.Role, models.DefaultUserRole),
		Active:    boolOr(in.Active, true),
		CreatedAt: s.now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return classifyDBError(err, "Email già esistente", "Errore creazione utente")
		}
		return findOr404(tx, &u, u.ID, "Utente non trovato")
	})
	if err != nil {
		s.logger.Warn(ctx, "[UserService.Create] failed", "email", email, "error", err)
		return nil, err
	}
	s.logger.Info(ctx, "[UserService.Create] user created", "id", u.ID)
	return &u, nil
}

// Update overwrites name, email and role. Omitted role or active keep the
// stored values.
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	fullName, email := strings.TrimSpace(in.FullName), strings.TrimSpace(in.Email)
	if fullName == "" || email == "" {
		return nil, Validation("Nome completo e email obbligatori")
	}

	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr404(tx, &u, id, "Utente non trovato"); err != nil {
			return err
		}
		err := tx.Model(&models.User{ID: id}).Updates(map[string]any{
			"email":     email,
			"full_name": fullName,
			"role":      stringOr(in.Role, u.Role),
			"active":    boolOr(in.Active, u.Active),
		}).Error
		if err != nil {
			return classifyDBError(err, "Email già esistente", "Errore aggiornamento utente")
		}
		u = models.User{}
		return findOr404(tx, &u, id, "Utente non trovato")
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete always succeeds for an existing user; rows pointing at the user
// lose the reference.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := findOr404(tx, &u, id, "Utente non trovato"); err != nil {
			return err
		}
		if err := applyReferencePolicy(tx, u.TableName(), id); err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return Internal("Errore eliminazione utente", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "[UserService.Delete] user deleted", "id", id)
	return nil
}
