package reference

import "mop/internal/entity"

// Catalog is one reference directory (emner, statuser, vurderinger).
type Catalog struct {
	Name  string `yaml:"name"`
	Items []Item `yaml:"items"`
}

// Item is one catalog row. Color is used for emne badges only.
type Item struct {
	ID    int64  `yaml:"id"`
	Navn  string `yaml:"navn"`
	Color string `yaml:"color,omitempty"`
	Order int    `yaml:"order,omitempty"`
}

// Find returns the item with the given id.
func (c Catalog) Find(id int64) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Emne converts a catalog row into the relation shape entities carry.
func (i Item) Emne() *entity.Emne {
	return &entity.Emne{ID: i.ID, Navn: i.Navn, Color: i.Color}
}

// Ref converts a catalog row into a named relation.
func (i Item) Ref() *entity.NamedRef {
	return &entity.NamedRef{ID: i.ID, Navn: i.Navn}
}
