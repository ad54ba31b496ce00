package valueobjects

import "strings"

// NodeKind classifies the entity a node represents.
type NodeKind string

const (
	KindRoot            NodeKind = "root"
	KindEmail           NodeKind = "email"
	KindPhone           NodeKind = "phone"
	KindUsername        NodeKind = "username"
	KindPlatformAccount NodeKind = "platform-account"
	KindPerson          NodeKind = "person"
	KindAddress         NodeKind = "address"
	KindBreachRecord    NodeKind = "breach-record"
)

// IsValid reports whether the kind belongs to the closed set.
func (k NodeKind) IsValid() bool {
	switch k {
	case KindRoot, KindEmail, KindPhone, KindUsername, KindPlatformAccount,
		KindPerson, KindAddress, KindBreachRecord:
		return true
	}
	return false
}

// NormalizeSelector canonicalizes a raw identifying value so that the same
// real-world entity always resolves to the same key. Phone numbers keep
// digits only; everything else is lowercased and trimmed. Pure and total:
// any input produces a valid (possibly empty) selector.
func NormalizeSelector(kind NodeKind, raw string) string {
	if kind == KindPhone {
		var b strings.Builder
		b.Grow(len(raw))
		for _, r := range raw {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// DeriveNodeID builds the stable node identifier for an entity. Two builder
// passes that see casing or whitespace variants of the same value produce
// the same id.
func DeriveNodeID(kind NodeKind, raw string) string {
	return string(kind) + ":" + NormalizeSelector(kind, raw)
}

// DeriveEdgeID builds the edge identifier from the ordered endpoint pair and
// the optional relationship label. Storage is directional; duplicate
// suppression checks both orderings of the pair, so feeding the same
// relationship twice cannot yield two edges regardless of which endpoint
// comes first.
func DeriveEdgeID(sourceID, targetID, label string) string {
	if label == "" {
		return sourceID + "->" + targetID
	}
	return sourceID + "->" + targetID + "#" + strings.ToLower(strings.TrimSpace(label))
}
