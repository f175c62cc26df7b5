package domain

import "strings"

// Action is one of the two actionable outcomes the extractor can detect
// for a drug. The set is closed; a switch over Action is exhaustive.
type Action int

const (
	// ActionDosingChange means CPIC recommends a dosing adjustment.
	ActionDosingChange Action = iota

	// ActionAlternateDrug means CPIC recommends considering another drug.
	ActionAlternateDrug
)

// String returns the marker-vocabulary name of the action.
func (a Action) String() string {
	switch a {
	case ActionDosingChange:
		return "Dosing Info"
	case ActionAlternateDrug:
		return "Alternate Drug"
	}
	return "unknown"
}

// ChangeLabel returns the label used in the aggregate table.
func (a Action) ChangeLabel() string {
	switch a {
	case ActionDosingChange:
		return "Dosage Change"
	case ActionAlternateDrug:
		return "Consider Alternate"
	}
	return "unknown"
}

// ActionSet is a set of distinct Actions for one drug.
// Iteration order is fixed (dosing change before alternate drug) so that
// composite labels do not depend on insertion order.
type ActionSet struct {
	dosing    bool
	alternate bool
}

// Add inserts an action into the set. Adding an action already present
// is a no-op.
func (s *ActionSet) Add(a Action) {
	switch a {
	case ActionDosingChange:
		s.dosing = true
	case ActionAlternateDrug:
		s.alternate = true
	}
}

// Has reports whether the action is in the set.
func (s ActionSet) Has(a Action) bool {
	switch a {
	case ActionDosingChange:
		return s.dosing
	case ActionAlternateDrug:
		return s.alternate
	}
	return false
}

// Empty reports whether no action has been recorded.
func (s ActionSet) Empty() bool {
	return !s.dosing && !s.alternate
}

// Actions returns the actions in fixed order: dosing change first.
func (s ActionSet) Actions() []Action {
	var out []Action
	if s.dosing {
		out = append(out, ActionDosingChange)
	}
	if s.alternate {
		out = append(out, ActionAlternateDrug)
	}
	return out
}

// Recommendation pairs a drug with its accumulated actions.
type Recommendation struct {
	// Drug is the normalised (lowercase, trimmed) drug name.
	Drug string

	// Actions is the non-empty set of actions detected for the drug.
	Actions ActionSet
}

// RecommendationSet is an insertion-ordered mapping from normalised drug
// name to its action set. Drug identity is case-insensitive; the order in
// which drugs were first registered is preserved so that first-match-wins
// policies downstream are deterministic.
type RecommendationSet struct {
	order  []string
	byDrug map[string]*ActionSet
}

// NewRecommendationSet returns an empty set.
func NewRecommendationSet() *RecommendationSet {
	return &RecommendationSet{byDrug: make(map[string]*ActionSet)}
}

// NormalizeDrug lowercases and trims a drug name for identity purposes.
func NormalizeDrug(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a drug with an empty action set if it is not yet present.
// Returns the normalised name.
func (r *RecommendationSet) Register(drug string) string {
	key := NormalizeDrug(drug)
	if key == "" {
		return key
	}
	if _, ok := r.byDrug[key]; !ok {
		r.byDrug[key] = &ActionSet{}
		r.order = append(r.order, key)
	}
	return key
}

// Add records an action for a drug, registering the drug if needed.
// Duplicate actions are idempotent.
func (r *RecommendationSet) Add(drug string, a Action) {
	key := r.Register(drug)
	if key == "" {
		return
	}
	r.byDrug[key].Add(a)
}

// Lookup returns the action set for an exact (case-insensitive) drug name.
func (r *RecommendationSet) Lookup(drug string) (ActionSet, bool) {
	set, ok := r.byDrug[NormalizeDrug(drug)]
	if !ok {
		return ActionSet{}, false
	}
	return *set, true
}

// MatchSubstring finds the first registered drug, in insertion order, whose
// name contains the given name or is contained by it (case-insensitive).
// This mirrors the aggregate table's loose matching policy; it can match a
// drug whose name is a substring of another (e.g. "statin" inside
// "fluvastatin") and keeps only the first hit found.
func (r *RecommendationSet) MatchSubstring(name string) (Recommendation, bool) {
	needle := NormalizeDrug(name)
	if needle == "" {
		return Recommendation{}, false
	}
	for _, drug := range r.order {
		if strings.Contains(needle, drug) || strings.Contains(drug, needle) {
			return Recommendation{Drug: drug, Actions: *r.byDrug[drug]}, true
		}
	}
	return Recommendation{}, false
}

// Prune removes every drug whose action set is empty. A detected section
// with no actionable outcome carries no information.
func (r *RecommendationSet) Prune() {
	kept := r.order[:0]
	for _, drug := range r.order {
		if r.byDrug[drug].Empty() {
			delete(r.byDrug, drug)
			continue
		}
		kept = append(kept, drug)
	}
	r.order = kept
}

// Drugs returns the registered drug names in insertion order.
func (r *RecommendationSet) Drugs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Recommendations returns all entries in insertion order.
func (r *RecommendationSet) Recommendations() []Recommendation {
	out := make([]Recommendation, 0, len(r.order))
	for _, drug := range r.order {
		out = append(out, Recommendation{Drug: drug, Actions: *r.byDrug[drug]})
	}
	return out
}

// Len returns the number of registered drugs.
func (r *RecommendationSet) Len() int {
	return len(r.order)
}
