// Package resources serves the dashboard's static assets and names the
// third-party scripts the page loads.
package resources

// StaticDirectoryPath is the path to static assets from the project root.
const StaticDirectoryPath = "internal/ui/resources/static"

// Pinned client libraries. The dashboard loads them from a CDN so the
// binary only embeds its own assets.
const (
	DatastarScript  = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"
	LeafletScript   = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"
	LeafletStyle    = "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"
	ChartScript     = "https://cdn.jsdelivr.net/npm/chart.js@4.4.4/dist/chart.umd.min.js"
	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = "&copy; OpenStreetMap contributors"
)

// StaticPath returns the URL path for a static asset.
func StaticPath(path string) string {
	return "/static/" + path
}
