package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sciencejournal/auth"
	"sciencejournal/models"
	"sciencejournal/repository"
)

// ConferenceInput enthält die Felder einer neuen Konferenz.
type ConferenceInput struct {
	Name        string
	Location    string
	Description string
	StartsAt    *time.Time
}

type ConferenceService struct {
	Conferences *repository.ConferenceRepository
	Logger      *zap.Logger
}

func NewConferenceService(conferences *repository.ConferenceRepository, logger *zap.Logger) *ConferenceService {
	return &ConferenceService{Conferences: conferences, Logger: logger}
}

func (s *ConferenceService) GetConferences(ctx context.Context) ([]models.Conference, error) {
	return s.Conferences.FindAll(ctx)
}

// CreateConference legt eine Konferenz an. Nur für Administratoren.
func (s *ConferenceService) CreateConference(ctx context.Context, p *auth.Principal, in ConferenceInput) (*models.Conference, error) {
	if !p.HasCapability(auth.CapabilityAdmin) {
		return nil, ErrAdminRequired
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: conference name is required", ErrInvalidArgument)
	}
	if _, err := s.Conferences.FindByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: conference %q already exists", ErrConflict, name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	conf := &models.Conference{
		Name:        name,
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
		StartsAt:    in.StartsAt,
	}
	if err := s.Conferences.Create(ctx, conf); err != nil {
		return nil, fromRepo(err)
	}
	s.Logger.Info("Conference created", zap.String("name", name), zap.String("created_by", p.Email))
	return conf, nil
}

// SeedDefaults legt die Standardkonferenzen an, wenn noch keine existieren.
func (s *ConferenceService) SeedDefaults(ctx context.Context) error {
	count, err := s.Conferences.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.Logger.Info("Conferences already seeded", zap.Int64("count", count))
		return nil
	}
	defaults := []models.Conference{
		{Name: "International Conference on Machine Learning", Location: "Vienna"},
		{Name: "Conference on Neural Information Processing Systems", Location: "Vancouver"},
		{Name: "Annual Meeting of the Association for Computational Linguistics", Location: "Bangkok"},
		{Name: "International Conference on Software Engineering", Location: "Lisbon"},
	}
	if err := s.Conferences.CreateAll(ctx, defaults); err != nil {
		return err
	}
	s.Logger.Info("Seeded default conferences", zap.Int("count", len(defaults)))
	return nil
}
