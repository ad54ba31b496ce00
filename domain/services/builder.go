package services

import (
	"go.uber.org/zap"

	"linkscope-backend/domain/core/entities"
	"linkscope-backend/domain/core/valueobjects"
)

// CandidateSet is the builder's output: a complete node/edge set derived
// from the full finding list, carrying placeholder physics state. It never
// touches the live snapshot; the reconciler merges it in.
type CandidateSet struct {
	Nodes []*entities.Node
	Edges []*entities.Edge

	// Parents maps node id → resolved parent node id, which the reconciler
	// uses to seed genuinely new nodes near their attachment point.
	Parents map[string]string
}

// Builder converts raw findings into a candidate node/edge set. It re-runs
// on every change notification with the full finding list, so every step is
// deduplicated and idempotent: two passes over the same findings produce an
// identical set.
type Builder struct {
	extractors map[entities.FindingKind]ExtractFunc
	logger     *zap.Logger
}

// NewBuilder creates a builder with the default extraction table.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{
		extractors: defaultExtractors(),
		logger:     logger,
	}
}

// RegisterExtractor adds or replaces the extractor for a finding kind.
func (b *Builder) RegisterExtractor(kind entities.FindingKind, fn ExtractFunc) {
	b.extractors[kind] = fn
}

// Build derives the candidate set for the given findings. The selector index
// maps normalized values of already-present nodes to their ids; hints that
// resolve nowhere fall back to the root, so every non-root node keeps a path
// back to the subject.
func (b *Builder) Build(root *entities.Node, findings []entities.Finding, selectorIndex map[string]string) *CandidateSet {
	set := &CandidateSet{Parents: make(map[string]string)}
	nodeByID := make(map[string]*entities.Node)
	edgeSeen := make(map[string]struct{})

	// Working index: pre-existing selectors plus everything derived during
	// this pass, so later findings can attach to entities created earlier in
	// the same rebuild.
	index := make(map[string]string, len(selectorIndex))
	for k, v := range selectorIndex {
		index[k] = v
	}

	rootCopy := root.Clone()
	set.Nodes = append(set.Nodes, rootCopy)
	nodeByID[rootCopy.ID] = rootCopy

	for _, f := range findings {
		extract, ok := b.extractors[f.Kind]
		if !ok {
			b.logger.Debug("Skipping finding with unknown kind",
				zap.String("findingID", f.ID),
				zap.String("kind", string(f.Kind)),
			)
			continue
		}
		for _, d := range extract(f) {
			b.apply(d, set, nodeByID, edgeSeen, index, root.ID)
		}
	}

	b.logger.Debug("Built candidate set",
		zap.Int("findings", len(findings)),
		zap.Int("nodes", len(set.Nodes)),
		zap.Int("edges", len(set.Edges)),
	)
	return set
}

// apply folds one derivation into the candidate set.
func (b *Builder) apply(
	d Derivation,
	set *CandidateSet,
	nodeByID map[string]*entities.Node,
	edgeSeen map[string]struct{},
	index map[string]string,
	rootID string,
) {
	if !d.Kind.IsValid() || d.Kind == valueobjects.KindRoot {
		return
	}
	normalized := valueobjects.NormalizeSelector(d.Kind, d.Value)
	if normalized == "" {
		return
	}
	id := valueobjects.DeriveNodeID(d.Kind, d.Value)

	if _, exists := nodeByID[id]; !exists {
		label := d.Label
		if label == "" {
			label = d.Value
		}
		node := entities.NewNode(id, d.Kind, label)
		node.Metadata = d.Metadata
		set.Nodes = append(set.Nodes, node)
		nodeByID[id] = node
	}
	if _, taken := index[normalized]; !taken {
		index[normalized] = id
	}

	parentID := b.resolveParent(d.ParentHint, index, rootID)
	if parentID == id {
		// A selector hinting at itself re-anchors to root rather than
		// producing a degenerate self-edge or an orphan.
		parentID = rootID
	}
	if parentID == id {
		return
	}
	if _, seeded := set.Parents[id]; !seeded {
		set.Parents[id] = parentID
	}

	// Suppression is symmetric over the endpoints: a pair already linked
	// under the same label in either direction yields no second edge.
	edge := entities.NewEdge(parentID, id, d.EdgeLabel, d.Strength)
	if _, dup := edgeSeen[edge.ID]; dup {
		return
	}
	if _, dup := edgeSeen[valueobjects.DeriveEdgeID(id, parentID, d.EdgeLabel)]; dup {
		return
	}
	edgeSeen[edge.ID] = struct{}{}
	set.Edges = append(set.Edges, edge)
}

// resolveParent maps a raw parent hint to a known node id, trying the text
// normalization first and the phone normalization second, falling back to
// the root when neither matches.
func (b *Builder) resolveParent(hint string, index map[string]string, rootID string) string {
	if hint == "" {
		return rootID
	}
	if id, ok := index[valueobjects.NormalizeSelector(valueobjects.KindEmail, hint)]; ok {
		return id
	}
	if id, ok := index[valueobjects.NormalizeSelector(valueobjects.KindPhone, hint)]; ok {
		return id
	}
	return rootID
}
