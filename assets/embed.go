// assets/embed.go
//
// Embedded static content shipped with the binary.
//   - catalog.json: the default activity dataset document, used when neither
//     CATALOG_URL nor CATALOG_FILE is configured.

package assets

import (
	"embed"
)

//go:embed catalog.json
var FS embed.FS

// CatalogDocument returns the raw embedded dataset document.
func CatalogDocument() ([]byte, error) {
	return FS.ReadFile("catalog.json")
}
