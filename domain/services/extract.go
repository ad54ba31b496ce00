package services

import (
	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// Derivation is one (entity kind, value, parent hint) triple extracted from
// a finding, plus the presentation and edge attributes that go with it.
type Derivation struct {
	Kind       valueobjects.NodeKind
	Value      string
	Label      string // display label; defaults to Value when empty
	ParentHint string // raw selector of the preferred parent; empty means root
	EdgeLabel  string
	Strength   float64
	Metadata   entities.NodeMetadata
}

// ExtractFunc turns one finding into zero or more derivations. Extractors
// must tolerate missing or malformed payload fields by returning fewer
// derivations, never by panicking.
type ExtractFunc func(f entities.Finding) []Derivation

// defaultExtractors is the per-kind extraction table. Adding a source means
// adding one entry here, not touching builder dispatch.
func defaultExtractors() map[entities.FindingKind]ExtractFunc {
	return map[entities.FindingKind]ExtractFunc{
		entities.FindingPersonRecord:        extractPersonRecord,
		entities.FindingBreachScan:          extractBreachScan,
		entities.FindingPlatformEnumeration: extractPlatformEnumeration,
		entities.FindingPhoneLookup:         extractPhoneLookup,
		entities.FindingUsernameScan:        extractUsernameScan,
	}
}

// extractPersonRecord handles people-search results: a person plus the
// emails, phones, addresses and relatives listed against them. Sub-entities
// attach to the person, the person attaches to whichever selector the record
// was found by.
func extractPersonRecord(f entities.Finding) []Derivation {
	name := f.Str("name")
	if name == "" {
		return nil
	}
	meta := entities.NodeMetadata{Source: f.Source, URL: f.Str("url")}
	out := []Derivation{{
		Kind:       valueobjects.KindPerson,
		Value:      name,
		ParentHint: f.Str("subject"),
		EdgeLabel:  "identified",
		Strength:   0.8,
		Metadata:   meta,
	}}
	for _, email := range f.StrList("emails") {
		out = append(out, Derivation{
			Kind: valueobjects.KindEmail, Value: email,
			ParentHint: name, EdgeLabel: "registered", Strength: 0.7, Metadata: meta,
		})
	}
	for _, phone := range f.StrList("phones") {
		out = append(out, Derivation{
			Kind: valueobjects.KindPhone, Value: phone,
			ParentHint: name, EdgeLabel: "registered", Strength: 0.7, Metadata: meta,
		})
	}
	for _, addr := range f.StrList("addresses") {
		out = append(out, Derivation{
			Kind: valueobjects.KindAddress, Value: addr,
			ParentHint: name, EdgeLabel: "resides", Strength: 0.5, Metadata: meta,
		})
	}
	for _, rel := range f.StrList("relatives") {
		out = append(out, Derivation{
			Kind: valueobjects.KindPerson, Value: rel,
			ParentHint: name, EdgeLabel: "relative", Strength: 0.4, Metadata: meta,
		})
	}
	return out
}

// extractBreachScan handles breach lookups keyed by email: one breach-record
// node per listed breach, attached to the probed email.
func extractBreachScan(f entities.Finding) []Derivation {
	email := f.Str("email")
	if email == "" {
		return nil
	}
	var out []Derivation
	for _, raw := range f.List("breaches") {
		var name, domain string
		switch b := raw.(type) {
		case string:
			name = b
		case map[string]any:
			name, _ = b["name"].(string)
			domain, _ = b["domain"].(string)
		}
		if name == "" {
			continue
		}
		out = append(out, Derivation{
			Kind:       valueobjects.KindBreachRecord,
			Value:      name,
			ParentHint: email,
			EdgeLabel:  "breached",
			Strength:   0.6,
			Metadata:   entities.NodeMetadata{Source: f.Source, URL: domain},
		})
	}
	return out
}

// extractPlatformEnumeration handles account-presence sweeps: one
// platform-account node per positive result, parented to the email or
// username the sweep was run against.
func extractPlatformEnumeration(f entities.Finding) []Derivation {
	subject := f.Str("subject")
	var out []Derivation
	for _, raw := range f.List("platforms") {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		exists, _ := p["exists"].(bool)
		name, _ := p["name"].(string)
		if !exists || name == "" {
			continue
		}
		url, _ := p["url"].(string)
		out = append(out, Derivation{
			Kind:       valueobjects.KindPlatformAccount,
			Value:      name,
			ParentHint: subject,
			EdgeLabel:  "account",
			Strength:   0.6,
			Metadata:   entities.NodeMetadata{Source: f.Source, URL: url, Verified: true},
		})
	}
	return out
}

// extractPhoneLookup handles reverse phone lookups: the phone itself plus
// the owner when one is named.
func extractPhoneLookup(f entities.Finding) []Derivation {
	phone := f.Str("phone")
	if phone == "" {
		return nil
	}
	meta := entities.NodeMetadata{Source: f.Source}
	out := []Derivation{{
		Kind:       valueobjects.KindPhone,
		Value:      phone,
		Label:      f.Str("display"),
		ParentHint: f.Str("subject"),
		EdgeLabel:  "lookup",
		Strength:   0.6,
		Metadata:   meta,
	}}
	if owner := f.Str("owner"); owner != "" {
		out = append(out, Derivation{
			Kind: valueobjects.KindPerson, Value: owner,
			ParentHint: phone, EdgeLabel: "registered", Strength: 0.7, Metadata: meta,
		})
	}
	return out
}

// extractUsernameScan handles username discovery: the username node itself,
// attached to the selector it was derived from.
func extractUsernameScan(f entities.Finding) []Derivation {
	username := f.Str("username")
	if username == "" {
		return nil
	}
	return []Derivation{{
		Kind:       valueobjects.KindUsername,
		Value:      username,
		ParentHint: f.Str("subject"),
		EdgeLabel:  "handle",
		Strength:   0.6,
		Metadata:   entities.NodeMetadata{Source: f.Source},
	}}
}
