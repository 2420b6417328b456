package service

import (
	"context"

	"equipbook/internal/calendar"
	"equipbook/internal/domain"
	"equipbook/internal/models"

	"github.com/rs/zerolog"
)

// DirectoryService serves the read-only people and equipment lists.
type DirectoryService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewDirectoryService(repo domain.Repository, logger *zerolog.Logger) *DirectoryService {
	return &DirectoryService{repo: repo, logger: logger}
}

func (s *DirectoryService) ActivePeople(ctx context.Context) ([]models.Person, error) {
	people, err := s.repo.ActivePeople(ctx)
	if err != nil {
		return nil, err
	}
	if people == nil {
		people = []models.Person{}
	}
	for i := range people {
		if people[i].Color != "" {
			people[i].TextColor = calendar.BestTextColor(people[i].Color)
		}
	}
	return people, nil
}

func (s *DirectoryService) ActiveEquipment(ctx context.Context) ([]models.Equipment, error) {
	equipment, err := s.repo.ActiveEquipment(ctx)
	if err != nil {
		return nil, err
	}
	if equipment == nil {
		equipment = []models.Equipment{}
	}
	return equipment, nil
}

// Ready reports whether the content store answers.
func (s *DirectoryService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
