package reference

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known catalog names the store joins against.
const (
	CatalogEmner       = "emner"
	CatalogStatuser    = "statuser"
	CatalogVurderinger = "vurderinger"
)

// LoadCatalogs reads every *.yaml/*.yml catalog from dir, keyed by the
// catalog's declared name or the file name.
func LoadCatalogs(dir string) (map[string]Catalog, error) {
	result := make(map[string]Catalog)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}
		var cat Catalog
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, err
		}
		name := cat.Name
		if name == "" {
			name = strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		}
		result[name] = cat
	}
	return result, nil
}
