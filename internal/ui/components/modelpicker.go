// Copyright (c) 2024-2025 Maner Fan / Modu
// SPDX-License-Identifier: Apache-2.0

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manerfan/modu-tui/internal/model"
	"github.com/manerfan/modu-tui/internal/ui/styles"
	"github.com/manerfan/modu-tui/internal/util"
)

// =============================================================================
// MODEL PICKER
// =============================================================================

// PickerEntry is one selectable model, flattened out of its provider.
type PickerEntry struct {
	Provider model.ProviderSchema
	Model    model.ModelSchema
}

// ModelPicker is the searchable model selection overlay. Models from
// unconfigured providers and deprecated models are listed but cannot be
// chosen.
type ModelPicker struct {
	providers []model.ProviderWithModels
	query     string
	cursor    int

	// filtered is recomputed on every query or data change.
	filtered []pickerItem
}

type pickerItem struct {
	entry      PickerEntry
	selectable bool
}

// NewModelPicker creates a picker over the given providers.
func NewModelPicker(providers []model.ProviderWithModels) *ModelPicker {
	p := &ModelPicker{providers: providers}
	p.refilter()
	return p
}

// SetProviders replaces the provider list, keeping the query.
func (p *ModelPicker) SetProviders(providers []model.ProviderWithModels) {
	p.providers = providers
	p.refilter()
}

// SetQuery updates the search query and resets the cursor.
func (p *ModelPicker) SetQuery(query string) {
	p.query = query
	p.cursor = 0
	p.refilter()
}

// Query returns the current search query.
func (p *ModelPicker) Query() string {
	return p.query
}

// Move moves the cursor by delta, clamped to the filtered list.
func (p *ModelPicker) Move(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// Len returns how many entries match the current query.
func (p *ModelPicker) Len() int {
	return len(p.filtered)
}

// Selected returns the entry under the cursor, or ok=false when nothing
// is selectable there.
func (p *ModelPicker) Selected() (PickerEntry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return PickerEntry{}, false
	}
	item := p.filtered[p.cursor]
	if !item.selectable {
		return PickerEntry{}, false
	}
	return item.entry, true
}

// refilter flattens providers into entries matching the query. A model
// matches when the query is a substring of either its ID or its display
// name, case-insensitive.
func (p *ModelPicker) refilter() {
	query := strings.ToLower(strings.TrimSpace(p.query))
	p.filtered = p.filtered[:0]

	for _, provider := range p.providers {
		for _, m := range provider.Models {
			if query != "" &&
				!strings.Contains(strings.ToLower(m.Model), query) &&
				!strings.Contains(strings.ToLower(m.Name), query) {
				continue
			}
			p.filtered = append(p.filtered, pickerItem{
				entry:      PickerEntry{Provider: provider.Provider, Model: m},
				selectable: provider.Selectable(m),
			})
		}
	}

	if p.cursor >= len(p.filtered) {
		p.cursor = 0
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the picker overlay.
func (p *ModelPicker) View(theme *styles.Theme, width int) string {
	maxWidth := 60
	if width > 0 && width-6 < maxWidth {
		maxWidth = width - 6
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var lines []string
	lines = append(lines, theme.InputPrompt.Render("Model: ")+p.query)

	if len(p.filtered) == 0 {
		lines = append(lines, theme.FormHint.Render("No models match"))
	}

	for i, item := range p.filtered {
		label := item.entry.Model.Name
		if label == "" {
			label = item.entry.Model.Model
		}
		line := util.TruncateWidth(label+"  "+theme.FormHint.Render(item.entry.Provider.Name), maxWidth-4)

		switch {
		case !item.selectable:
			line = theme.PickerDisabled.Render(line)
		case i == p.cursor:
			line = theme.PickerSelected.Render("> " + line)
		default:
			line = theme.PickerItem.Render("  " + line)
		}
		lines = append(lines, line)
	}

	return theme.PickerBox.MaxWidth(maxWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, lines...),
	)
}
