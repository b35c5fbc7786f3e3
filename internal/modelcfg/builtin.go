package modelcfg

import "mop/internal/entity"

// Built-in base configs for the four MOP entity types. YAML overlays can
// replace any of these at startup (see LoadOverlay).
func builtinConfigs() []*Config {
	standardFields := []FieldConfig{
		{Name: "tittel", Label: "Tittel", Type: "string", Required: true},
		{Name: "beskrivelse", Label: "Beskrivelse", Type: "richtext"},
		{Name: "emneId", Label: "Emne", Type: "emneselect"},
		{Name: "status", Label: "Status", Type: "statusselect"},
		{Name: "vurdering", Label: "Vurdering", Type: "vurderingselect"},
		{Name: "prioritet", Label: "Prioritet", Type: "prioritetselect"},
	}
	listFields := []FieldConfig{
		{Name: "tittel", Label: "Tittel"},
		{Name: "emne", Label: "Emne"},
		{Name: "status", Label: "Status"},
	}

	krav := &Config{
		EntityType:     entity.TypeKrav,
		Title:          "Krav",
		ModelPrintName: "krav",
		NewButtonLabel: "Nytt krav",
		Workspace: WorkspaceConfig{
			GroupBy: "emne",
			Features: FeatureToggles{
				Hierarchy: boolPtr(true),
			},
		},
		Display: SectionConfig{Fields: listFields},
		Form: SectionConfig{Fields: append(append([]FieldConfig(nil), standardFields...),
			FieldConfig{Name: "obligatorisk", Label: "Obligatorisk", Type: "bool"},
			FieldConfig{Name: "parentId", Label: "Overordnet krav", Type: "parentselect"},
		)},
		List: ListConfig{Fields: listFields},
	}

	tiltak := &Config{
		EntityType:     entity.TypeTiltak,
		Title:          "Tiltak",
		ModelPrintName: "tiltak",
		NewButtonLabel: "Nytt tiltak",
		Workspace: WorkspaceConfig{
			GroupBy: "emne",
			Features: FeatureToggles{
				Hierarchy: boolPtr(true),
			},
			UI: UIToggles{
				// tiltak carry no obligatorisk flag
				ShowObligatorisk: boolPtr(false),
			},
		},
		Display: SectionConfig{Fields: listFields},
		Form: SectionConfig{Fields: append(append([]FieldConfig(nil), standardFields...),
			FieldConfig{Name: "parentId", Label: "Overordnet tiltak", Type: "parentselect"},
			FieldConfig{Name: "kravIds", Label: "Tilknyttede krav", Type: "kravmultiselect"},
		)},
		List: ListConfig{Fields: listFields},
	}

	prosjektKrav := &Config{
		EntityType:     entity.TypeProsjektKrav,
		Title:          "Prosjektkrav",
		ModelPrintName: "prosjektkrav",
		NewButtonLabel: "Nytt prosjektkrav",
		Workspace:      krav.Workspace,
		Display:        SectionConfig{Fields: listFields},
		Form:           SectionConfig{Fields: append([]FieldConfig(nil), krav.Form.Fields...)},
		List:           ListConfig{Fields: listFields},
	}

	prosjektTiltak := &Config{
		EntityType:     entity.TypeProsjektTiltak,
		Title:          "Prosjekttiltak",
		ModelPrintName: "prosjekttiltak",
		NewButtonLabel: "Nytt prosjekttiltak",
		Workspace:      tiltak.Workspace,
		Display:        SectionConfig{Fields: listFields},
		Form: SectionConfig{Fields: append(append([]FieldConfig(nil), standardFields...),
			FieldConfig{Name: "parentId", Label: "Overordnet tiltak", Type: "parentselect"},
			FieldConfig{Name: "prosjektKravIds", Label: "Tilknyttede prosjektkrav", Type: "kravmultiselect"},
		)},
		List: ListConfig{Fields: listFields},
	}

	return []*Config{krav, tiltak, prosjektKrav, prosjektTiltak}
}
