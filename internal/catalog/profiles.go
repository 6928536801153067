package catalog

import "strings"

const (
	ProfileMaderas     = "maderas"
	ProfileInmunizados = "inmunizados"
	ProfileMayorista   = "mayorista"
)

var builtinProfiles = []Profile{
	{
		Name:                   ProfileMaderas,
		ReferenceColumn:        "Referencia",
		DescriptionColumn:      "Desc. item",
		ShortDescriptionColumn: "Desc. corta item",
		NotesColumn:            "Notas ítem",
		Variants: []VariantSpec{
			{Key: "caldas", Label: "Caldas", Column: "LP1"},
			{Key: "cuiva", Label: "Cuiva", Column: "LP2", FallbackTo: "caldas"},
			{Key: "chagualo", Label: "Chagualo", Column: "LP3"},
		},
		DefaultVariant: "caldas",
	},
	{
		Name:                   ProfileInmunizados,
		ReferenceColumn:        "Referencia",
		DescriptionColumn:      "Descripción",
		ShortDescriptionColumn: "Descripción corta",
		NotesColumn:            "Notas",
		AttributeColumns: map[string]string{
			"madera":     "Tipo de madera",
			"acabado":    "Acabado",
			"uso":        "Uso",
			"garantia":   "Garantía",
			"inmunizado": "Inmunizado",
		},
		Variants: []VariantSpec{
			{Key: "caldas-iva", Label: "Caldas (IVA incluido)", Column: "Caldas con IVA"},
			{Key: "caldas-sin-iva", Label: "Caldas (sin IVA)", Column: "Caldas sin IVA"},
			{Key: "chagualo-iva", Label: "Chagualo (IVA incluido)", Column: "Chagualo con IVA"},
			{Key: "chagualo-sin-iva", Label: "Chagualo (sin IVA)", Column: "Chagualo sin IVA"},
		},
		DefaultVariant: "caldas-iva",
	},
	{
		Name:                   ProfileMayorista,
		ReferenceColumn:        "Referencia",
		DescriptionColumn:      "Desc. item",
		ShortDescriptionColumn: "Desc. corta item",
		NotesColumn:            "Notas ítem",
		Variants: []VariantSpec{
			{Key: "detal", Label: "Detal", Column: "Precio detal"},
			{Key: "mayorista", Label: "Mayorista", Column: "Precio mayorista", FallbackTo: "detal"},
		},
		DefaultVariant: "detal",
	},
}

// Profiles returns copies of the built-in profiles.
func Profiles() []Profile {
	out := make([]Profile, 0, len(builtinProfiles))
	for _, p := range builtinProfiles {
		out = append(out, p.clone())
	}
	return out
}

// LookupProfile finds a profile by name, case-insensitively, among the given
// extras first and then the built-ins.
func LookupProfile(name string, extra ...Profile) (Profile, bool) {
	name = strings.TrimSpace(name)
	for _, p := range extra {
		if strings.EqualFold(p.Name, name) {
			return p.clone(), true
		}
	}
	for _, p := range builtinProfiles {
		if strings.EqualFold(p.Name, name) {
			return p.clone(), true
		}
	}
	return Profile{}, false
}
