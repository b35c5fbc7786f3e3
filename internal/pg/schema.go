package pg

import (
	"fmt"
	"strings"

	"mop/internal/entity"
)

const schemaName = "mop"

// tableFor maps an entity type to its table name. camelCase types become
// snake_case tables.
func tableFor(t entity.Type) string {
	switch t {
	case entity.TypeKrav:
		return "krav"
	case entity.TypeTiltak:
		return "tiltak"
	case entity.TypeProsjektKrav:
		return "prosjekt_krav"
	case entity.TypeProsjektTiltak:
		return "prosjekt_tiltak"
	}
	return strings.ToLower(string(t))
}

func qualified(t entity.Type) string {
	return fmt.Sprintf("%s.%s", schemaName, tableFor(t))
}

// GenerateDDL returns ordered DDL fragments. Records keep the full payload
// as jsonb next to the system columns; parent links get a same-table FK so
// the database refuses dangling hierarchies even when the app is bypassed.
// All statements are idempotent.
func GenerateDDL() map[string]string {
	var tables strings.Builder
	fmt.Fprintf(&tables, "create schema if not exists %s;\n", schemaName)
	for _, t := range entity.SupportedTypes() {
		fmt.Fprintf(&tables, `create table if not exists %s (
  "id" bigserial primary key,
  "uid" text not null,
  "version" bigint not null,
  "created_at" timestamp with time zone not null,
  "updated_at" timestamp with time zone not null,
  "deleted" boolean not null default false,
  "emne_id" bigint null,
  "parent_id" bigint null,
  "data" jsonb not null
);
`, qualified(t))
		fmt.Fprintf(&tables, "create unique index if not exists %s_uid_uq on %s(uid);\n",
			tableFor(t), qualified(t))
		fmt.Fprintf(&tables, "create index if not exists %s_emne_idx on %s(emne_id) where not deleted;\n",
			tableFor(t), qualified(t))
	}

	var fks strings.Builder
	for _, t := range entity.SupportedTypes() {
		fmt.Fprintf(&fks,
			"alter table %s add constraint %s_parent_fk foreign key (parent_id) references %s(id) on delete restrict;\n",
			qualified(t), tableFor(t), qualified(t))
	}

	return map[string]string{
		"000_schema_and_tables": tables.String(),
		"200_foreign_keys":      fks.String(),
	}
}
