// Package ui renders targets and page state for the terminal.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sebasr/target-manager/internal/form"
	"github.com/sebasr/target-manager/internal/listing"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/validation"
)

// idWidth is the number of id characters shown in the table.
const idWidth = 8

const skeletonCell = "░░░░░░"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// TruncateID shortens an id to its first eight characters followed by "...".
func TruncateID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth] + "..."
}

// FormatLocation renders "lat, lon" with four decimals.
func FormatLocation(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

// FormatAltitude renders meters with one decimal.
func FormatAltitude(v float64) string {
	return fmt.Sprintf("%.1f m", v)
}

// FormatSpeed renders meters per second with one decimal.
func FormatSpeed(v float64) string {
	return fmt.Sprintf("%.1f m/s", v)
}

// FormatBearing renders degrees with one decimal.
func FormatBearing(v float64) string {
	return fmt.Sprintf("%.1f°", v)
}

// Row returns the table cells of a target; index is zero-based.
func Row(index int, t models.Target) []string {
	return []string{
		strconv.Itoa(index + 1),
		TruncateID(t.ID),
		FormatLocation(t.Latitude, t.Longitude),
		FormatAltitude(t.Altitude),
		models.FormatFrequency(t.Frequency),
		FormatSpeed(t.Speed),
		FormatBearing(t.Bearing),
		t.IPAddress,
	}
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Table renders targets as a bordered table.
func Table(targets []models.Target) string {
	t := newTable(listing.Columns)
	for i, target := range targets {
		t.Row(Row(i, target)...)
	}
	return t.String()
}

// Skeleton renders the loading placeholder.
func Skeleton(sk listing.Skeleton) string {
	t := newTable(sk.Columns)
	for i := 0; i < sk.Rows; i++ {
		row := make([]string, len(sk.Columns))
		for j := range row {
			row[j] = mutedStyle.Render(skeletonCell)
		}
		t.Row(row...)
	}
	return t.String()
}

// Banner renders an error message. It returns "" for an empty message.
func Banner(msg string) string {
	if msg == "" {
		return ""
	}
	return bannerStyle.Render("✖ " + msg)
}

// ListView renders the list page for its current state.
func ListView(page *listing.Controller) string {
	var b strings.Builder
	if banner := Banner(page.Banner()); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	switch page.State() {
	case listing.Loading:
		b.WriteString(Skeleton(page.Placeholder()))
	case listing.LoadError:
		b.WriteString(mutedStyle.Render("Targets could not be loaded. Retry to try again."))
	default:
		targets := page.Targets()
		if len(targets) == 0 {
			b.WriteString(mutedStyle.Render(listing.EmptyMessage))
		} else {
			b.WriteString(Table(targets))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Details renders every field of a target, one per line.
func Details(t models.Target) string {
	lines := []struct{ label, value string }{
		{"ID", t.ID},
		{"Location", FormatLocation(t.Latitude, t.Longitude)},
		{"Altitude", FormatAltitude(t.Altitude)},
		{"Frequency", models.FormatFrequency(t.Frequency)},
		{"Speed", FormatSpeed(t.Speed)},
		{"Bearing", FormatBearing(t.Bearing)},
		{"IP Address", t.IPAddress},
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(labelStyle.Render(l.label))
		b.WriteString(l.value)
		b.WriteString("\n")
	}
	return b.String()
}

// DeleteConfirmation renders the prompt shown before deleting a target.
func DeleteConfirmation(t models.Target) string {
	return titleStyle.Render("Delete Target") + "\n" +
		"Are you sure you want to delete this target? This action cannot be undone.\n\n" +
		Details(t)
}

// FieldLabel returns the human label of a form field.
func FieldLabel(f validation.Field) string {
	switch f {
	case validation.FieldLatitude:
		return "Latitude"
	case validation.FieldLongitude:
		return "Longitude"
	case validation.FieldAltitude:
		return "Altitude (m)"
	case validation.FieldFrequency:
		return "Frequency"
	case validation.FieldSpeed:
		return "Speed (m/s)"
	case validation.FieldBearing:
		return "Bearing (°)"
	case validation.FieldIPAddress:
		return "IP Address"
	}
	return string(f)
}

// FormErrors renders the form-level error followed by field errors in display
// order. It returns "" when there is nothing to show.
func FormErrors(f *form.Controller) string {
	var b strings.Builder
	if msg := f.SubmitError(); msg != "" {
		b.WriteString(Banner(msg))
		b.WriteString("\n")
	}
	errs := f.Errors()
	for _, field := range errs.Sorted() {
		b.WriteString(errorStyle.Render(fmt.Sprintf("  %s: %s", FieldLabel(field), errs[field])))
		b.WriteString("\n")
	}
	return b.String()
}

// Warning renders a highlighted notice, e.g. that mock data is in use.
func Warning(msg string) string {
	return warningStyle.Render(msg)
}
