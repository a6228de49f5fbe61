package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"sqldash/internal/domain"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("instance selection aborted by user")

// SelectInstanceForm fetches the instance list and presents a selection
// form, returning the chosen instance.
func SelectInstanceForm(provider domain.Provider) (*domain.Instance, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	var instances []domain.Instance
	fetchErr := spinner.New().
		Title("Fetching instances...").
		Accessible(accessible).
		Output(os.Stderr).
		ActionWithErr(func(ctx context.Context) error {
			var err error
			instances, err = provider.ListInstances(ctx)
			return err
		}).
		Run()
	if fetchErr != nil {
		if errors.Is(fetchErr, huh.ErrUserAborted) || errors.Is(fetchErr, context.Canceled) {
			return nil, ErrAborted
		}
		return nil, fetchErr
	}

	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances found")
	}

	instanceByID := make(map[string]domain.Instance, len(instances))
	for _, inst := range instances {
		instanceByID[inst.ID] = inst
	}

	var selectedID string
	options := buildInstanceOptions(instances)

	height := len(options)
	if height < 5 {
		height = 5
	}
	if height > 12 {
		height = 12
	}

	selectField := huh.NewSelect[string]().
		Title("Select an instance").
		Options(options...).
		Value(&selectedID).
		Height(height)

	if err := runForm(accessible, huh.NewGroup(selectField)); err != nil {
		return nil, err
	}

	instance := instanceByID[selectedID]
	return &instance, nil
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// buildInstanceOptions builds huh select options from a slice of instances.
func buildInstanceOptions(instances []domain.Instance) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(instances))
	for _, inst := range instances {
		options = append(options, huh.NewOption(instanceOptionLabel(inst), inst.ID))
	}
	return options
}

// instanceOptionLabel formats an instance for display in the selection list.
func instanceOptionLabel(inst domain.Instance) string {
	parts := []string{inst.Name}

	if inst.Status != "" {
		parts = append(parts, inst.Status)
	}
	if inst.Tier != "" {
		parts = append(parts, inst.Tier)
	}
	if inst.Region != "" {
		parts = append(parts, inst.Region)
	}

	return strings.Join(parts, " · ")
}
