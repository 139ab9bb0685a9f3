package dashboard

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/metroflow/internal/ui/features/common"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.gohtml"))

// PageView renders the full page.
func PageView(data PageData) templ.Component {
	return common.Component(pageTemplates, "page", data)
}

// ControlsFragment renders the selector bar (#controls).
func ControlsFragment(view ControlsView) templ.Component {
	return common.Component(pageTemplates, "controls", view)
}

// DashboardFragment renders the tiles, notices and drawing data (#dashboard).
func DashboardFragment(view DashboardView) templ.Component {
	return common.Component(pageTemplates, "dashboard", view)
}

// RecordsFragment renders the raw table (#records).
func RecordsFragment(view RecordsView) templ.Component {
	return common.Component(pageTemplates, "records", view)
}
