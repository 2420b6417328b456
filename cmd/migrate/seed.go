package main

import (
	"context"
	"fmt"
	"strings"

	"equipbook/internal/models"

	"gopkg.in/yaml.v2"
)

// SeedFile is the layout of the directory seed YAML.
type SeedFile struct {
	People    []models.Person    `yaml:"people"`
	Equipment []models.Equipment `yaml:"equipment"`
}

type directoryWriter interface {
	UpsertPerson(ctx context.Context, p models.Person) error
	UpsertEquipment(ctx context.Context, e models.Equipment) error
}

func parseSeed(data []byte) (*SeedFile, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(file.People) == 0 && len(file.Equipment) == 0 {
		return nil, fmt.Errorf("seed has no people or equipment")
	}
	for i, p := range file.People {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("people[%d]: missing id", i)
		}
	}
	for i, e := range file.Equipment {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("equipment[%d]: missing id", i)
		}
	}
	return &file, nil
}

// apply upserts every entry and returns how many of each were written.
func apply(ctx context.Context, w directoryWriter, file *SeedFile) (int, int, error) {
	for _, p := range file.People {
		if err := w.UpsertPerson(ctx, p); err != nil {
			return 0, 0, fmt.Errorf("person %s: %w", p.ID, err)
		}
	}
	for _, e := range file.Equipment {
		if err := w.UpsertEquipment(ctx, e); err != nil {
			return len(file.People), 0, fmt.Errorf("equipment %s: %w", e.ID, err)
		}
	}
	return len(file.People), len(file.Equipment), nil
}
