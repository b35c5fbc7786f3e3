package modelcfg

import (
	"fmt"
	"strings"

	"mop/internal/entity"
)

// ConfigIssue is one diagnostic produced by Lint.
type ConfigIssue struct {
	EntityType string `json:"entityType"`
	Field      string `json:"field,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Lint checks every base config for contradictions that Process would paper
// over. Used as a gate before atomically swapping in a reloaded registry.
func (r *Registry) Lint() []ConfigIssue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var issues []ConfigIssue
	for t, c := range r.bases {
		et := string(t)

		if c.Workspace.Layout != "" && c.Workspace.Layout != LayoutSplit && c.Workspace.Layout != LayoutList {
			issues = append(issues, ConfigIssue{
				EntityType: et, Field: "workspace.layout", Code: "layout_unknown",
				Message: fmt.Sprintf("unknown layout %q (allowed: %s|%s)", c.Workspace.Layout, LayoutSplit, LayoutList),
			})
		}

		if c.Workspace.GroupBy != "" && c.Workspace.Features.Grouping != nil && !*c.Workspace.Features.Grouping {
			issues = append(issues, ConfigIssue{
				EntityType: et, Field: "workspace.groupBy", Code: "groupby_without_grouping",
				Message: "groupBy is set but the grouping feature is disabled",
			})
		}

		if d := c.List.Sorting.Direction; d != "" && !strings.EqualFold(d, "asc") && !strings.EqualFold(d, "desc") {
			issues = append(issues, ConfigIssue{
				EntityType: et, Field: "list.sorting.direction", Code: "sort_direction_unknown",
				Message: fmt.Sprintf("unknown sort direction %q (allowed: asc|desc)", d),
			})
		}

		if c.List.Pagination.PageSize < 0 {
			issues = append(issues, ConfigIssue{
				EntityType: et, Field: "list.pagination.pageSize", Code: "page_size_negative",
				Message: "pageSize must not be negative",
			})
		}

		// obligatorisk is a krav-family concept
		if entity.IsTiltakFamily(t) && c.Workspace.UI.ShowObligatorisk != nil && *c.Workspace.UI.ShowObligatorisk {
			issues = append(issues, ConfigIssue{
				EntityType: et, Field: "workspace.ui.showObligatorisk", Code: "obligatorisk_on_tiltak",
				Message: "tiltak-family entities have no obligatorisk flag",
			})
		}

		for _, f := range c.Form.Fields {
			if f.Name == "" {
				issues = append(issues, ConfigIssue{
					EntityType: et, Field: "form.fields", Code: "field_name_empty",
					Message: "form field has an empty name",
				})
			}
		}
	}
	return issues
}
