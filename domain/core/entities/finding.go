package entities

// FindingKind discriminates the raw investigative records delivered by the
// external finding source. The set is closed: unknown kinds are ignored by
// the builder rather than rejected.
type FindingKind string

const (
	FindingPersonRecord        FindingKind = "person-record"
	FindingBreachScan          FindingKind = "breach-scan"
	FindingPlatformEnumeration FindingKind = "platform-enumeration"
	FindingPhoneLookup         FindingKind = "phone-lookup"
	FindingUsernameScan        FindingKind = "username-scan"
)

// Finding is an opaque record from the external source. Payload shape is not
// validated beyond the fields each extractor reads; missing or malformed
// fields simply skip that extraction.
type Finding struct {
	ID      string         `json:"id"`
	Kind    FindingKind    `json:"kind"`
	Source  string         `json:"source,omitempty"`
	Payload map[string]any `json:"payload"`
}

// Str reads a string payload field, returning empty on absence or wrong type.
func (f Finding) Str(key string) string {
	s, _ := f.Payload[key].(string)
	return s
}

// Bool reads a boolean payload field, returning false on absence or wrong type.
func (f Finding) Bool(key string) bool {
	b, _ := f.Payload[key].(bool)
	return b
}

// List reads a payload field holding a list of values. JSON decoding yields
// []any; a missing or differently-typed field returns nil.
func (f Finding) List(key string) []any {
	l, _ := f.Payload[key].([]any)
	return l
}

// StrList reads a payload field as a list of strings, skipping entries of
// other types.
func (f Finding) StrList(key string) []string {
	raw := f.List(key)
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Map reads a payload field holding a nested object.
func (f Finding) Map(key string) map[string]any {
	m, _ := f.Payload[key].(map[string]any)
	return m
}
