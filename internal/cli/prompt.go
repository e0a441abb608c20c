package cli

import (
	"errors"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/ui"
	"github.com/sebasr/target-manager/internal/validation"
)

// Prompter asks the user for input.
type Prompter interface {
	Confirm(title, description string) (bool, error)
	EditDraft(title string, draft *validation.Draft, variant validation.Variant) error
}

// errAborted is returned when the user leaves a prompt with ctrl+c or esc.
var errAborted = errors.New("aborted")

type huhPrompter struct{}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, errAborted
	}
	return ok, err
}

func (huhPrompter) EditDraft(title string, draft *validation.Draft, variant validation.Variant) error {
	fields := make([]huh.Field, 0, len(validation.Fields))
	for _, f := range validation.Fields {
		if f == validation.FieldFrequency && variant == validation.Simple {
			fields = append(fields, frequencySelect(draft))
			continue
		}
		fields = append(fields, draftInput(f, draft, variant))
	}

	err := huh.NewForm(huh.NewGroup(fields...).Title(title)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return errAborted
	}
	return err
}

func draftInput(f validation.Field, draft *validation.Draft, variant validation.Variant) huh.Field {
	value := draftField(draft, f)
	return huh.NewInput().
		Title(ui.FieldLabel(f)).
		Value(value).
		Validate(func(s string) error {
			if msg := validation.ValidateField(f, s, variant); msg != "" {
				return errors.New(msg)
			}
			return nil
		})
}

func frequencySelect(draft *validation.Draft) huh.Field {
	options := make([]huh.Option[string], 0, len(validation.FrequencyOptions))
	for _, freq := range validation.FrequencyOptions {
		key := strconv.FormatFloat(freq, 'f', -1, 64)
		options = append(options, huh.NewOption(models.FormatFrequency(freq), key))
	}
	return huh.NewSelect[string]().
		Title(ui.FieldLabel(validation.FieldFrequency)).
		Options(options...).
		Value(&draft.Frequency)
}

// draftField returns a pointer to the string backing f.
func draftField(d *validation.Draft, f validation.Field) *string {
	switch f {
	case validation.FieldLatitude:
		return &d.Latitude
	case validation.FieldLongitude:
		return &d.Longitude
	case validation.FieldAltitude:
		return &d.Altitude
	case validation.FieldFrequency:
		return &d.Frequency
	case validation.FieldSpeed:
		return &d.Speed
	case validation.FieldBearing:
		return &d.Bearing
	}
	return &d.IPAddress
}
