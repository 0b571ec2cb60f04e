package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"a3kd/internal/api"

	"github.com/charmbracelet/huh"
)

func modelOptions(models []api.ModelOption) []huh.Option[string] {
	opts := make([]huh.Option[string], len(models))
	for i, m := range models {
		opts[i] = huh.NewOption(m.Name, m.ID)
	}

	return opts
}

// parseEpisodes parses and range-checks the episodes field.
func parseEpisodes(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if n < api.MinSearchEpisodes || n > api.MaxSearchEpisodes {
		return 0, fmt.Errorf("must be between %d and %d", api.MinSearchEpisodes, api.MaxSearchEpisodes)
	}

	return n, nil
}

// defaultModel keeps id when it is in models, else picks the first model.
func defaultModel(id string, models []api.ModelOption) string {
	for _, m := range models {
		if m.ID == id {
			return id
		}
	}
	if len(models) > 0 {
		return models[0].ID
	}

	return ""
}

// promptConfig fills cfg from an interactive form, starting from its current values.
func promptConfig(ctx context.Context, cfg *api.ExperimentConfig, cat Catalog) error {
	cfg.TeacherID = defaultModel(cfg.TeacherID, cat.Teachers)
	cfg.StudentID = defaultModel(cfg.StudentID, cat.Students)
	episodes := strconv.Itoa(cfg.SearchEpisodes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&cfg.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}

					return nil
				}),
			huh.NewSelect[string]().
				Title("Dataset").
				Options(huh.NewOptions(api.Datasets...)...).
				Value(&cfg.Dataset),
			huh.NewSelect[string]().
				Title("Teacher").
				Options(modelOptions(cat.Teachers)...).
				Value(&cfg.TeacherID),
			huh.NewSelect[string]().
				Title("Student").
				Options(modelOptions(cat.Students)...).
				Value(&cfg.StudentID),
			huh.NewInput().
				Title("Search episodes").
				Value(&episodes).
				Validate(func(s string) error {
					_, err := parseEpisodes(s)

					return err
				}),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return err
	}

	n, err := parseEpisodes(episodes)
	if err != nil {
		return err
	}
	cfg.SearchEpisodes = n

	return nil
}
