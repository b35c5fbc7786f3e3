package modelcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mop/internal/entity"
)

// LoadOverlay reads every *.yaml/*.yml model config from dir and replaces the
// matching base configs in the registry. Files must carry a supported
// entityType; anything else is a configuration error, not a silent skip.
func (r *Registry) LoadOverlay(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var c Config
		if err := yaml.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if c.EntityType == "" {
			// fall back to the file name, like enum catalogs do
			c.EntityType = entity.Type(strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		}
		if !entity.IsSupported(c.EntityType) {
			return &ConfigurationError{
				Value: string(c.EntityType),
				Msg:   fmt.Sprintf("model config %s: unsupported entity type %q (supported: %s)", path, c.EntityType, supportedList()),
			}
		}
		r.Put(&c)
	}
	return nil
}
