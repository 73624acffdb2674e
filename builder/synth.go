package builder

import "github.com/agentflare-ai/xsdcov/schema"

// Synthesizer maps a (name, type) pair to a deterministic textual value,
// so coverage runs are reproducible. Randomness, when it appears at all
// in this module, is confined to the pairwise candidate sampler under
// its own seed, never here.
type Synthesizer struct {
	samples map[string]string // builtin local type name -> sample value
}

// NewSynthesizer builds the default Synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{samples: map[string]string{
		"string":             "string_value",
		"normalizedString":   "normalized_value",
		"token":              "token_value",
		"language":           "en",
		"Name":               "Name_value",
		"NCName":             "NCName_value",
		"ID":                 "id_value_1",
		"IDREF":              "id_value_1",
		"IDREFS":             "id_value_1",
		"ENTITY":             "entity_value",
		"ENTITIES":           "entity_value",
		"NMTOKEN":            "NMTOKEN_VALUE",
		"NMTOKENS":           "NMTOKEN_VALUE",
		"anyURI":             "https://example.invalid/resource",
		"QName":              "tns:Value",
		"NOTATION":           "Value",
		"boolean":            "true",
		"decimal":            "1.0",
		"float":              "1.0",
		"double":             "1.0",
		"duration":           "P1D",
		"dateTime":           "2024-01-01T00:00:00Z",
		"time":               "00:00:00Z",
		"date":               "2024-01-01",
		"gYearMonth":         "2024-01",
		"gYear":              "2024",
		"gMonthDay":          "--01-01",
		"gDay":               "---01",
		"gMonth":             "--01",
		"hexBinary":          "48656c6c6f",
		"base64Binary":       "SGVsbG8=",
		"integer":            "1",
		"nonPositiveInteger": "0",
		"negativeInteger":    "-1",
		"long":               "1",
		"int":                "1",
		"short":              "1",
		"byte":               "1",
		"nonNegativeInteger": "0",
		"unsignedLong":       "1",
		"unsignedInt":        "1",
		"unsignedShort":      "1",
		"unsignedByte":       "1",
		"positiveInteger":    "1",
	}}
}

// Value produces a leaf value for typeLocal, consulting restr's
// enumeration facet first (first enumeration value wins), then the
// builtin sample table, then a generic placeholder derived from the type
// name.
func (s *Synthesizer) Value(typeLocal string, restr *schema.Restriction) string {
	if restr != nil && len(restr.Enumerations) > 0 {
		return restr.Enumerations[0]
	}
	if v, ok := s.samples[typeLocal]; ok {
		return v
	}
	if typeLocal == "" {
		return "value"
	}
	return typeLocal + "_value"
}

// ValueFor resolves a SimpleType (builtin leaf, or a restriction/list/union
// chain) to a sample value, walking the chain of restriction bases (each
// looked up by local name in model) while the type itself carries no
// enumeration, until it reaches an enumeration or a builtin base. model may be nil, in which case only st's own facets
// and the builtin table are consulted.
func (s *Synthesizer) ValueFor(model *schema.Model, typeLocal string, st *schema.SimpleType) string {
	if st == nil {
		return s.Value(typeLocal, nil)
	}
	if st.Restriction != nil && len(st.Restriction.Enumerations) > 0 {
		return st.Restriction.Enumerations[0]
	}
	if st.Restriction != nil && !st.Restriction.Base.IsZero() {
		base := st.Restriction.Base.Local
		if schema.IsBuiltin(base) {
			return s.Value(base, nil)
		}
		if model != nil {
			if baseType, ok := model.ResolveType(base); ok {
				if baseSt, ok := baseType.(*schema.SimpleType); ok {
					return s.ValueFor(model, base, baseSt)
				}
			}
		}
	}
	return s.Value(typeLocal, nil)
}
