package tool

// ToolFilterKind discriminates the ToolFilter variants from spec.md §4.2.
type ToolFilterKind string

const (
	FilterAll     ToolFilterKind = "all"
	FilterInclude ToolFilterKind = "include"
	FilterExclude ToolFilterKind = "exclude"
)

// ToolFilter gates which tool names a backend's entry in the Registry
// admits, independent of whether the backend actually lists that name.
type ToolFilter struct {
	Kind  ToolFilterKind
	Names map[string]bool
}

// AllFilter admits every name.
func AllFilter() ToolFilter { return ToolFilter{Kind: FilterAll} }

// IncludeFilter admits only the given names.
func IncludeFilter(names ...string) ToolFilter {
	return ToolFilter{Kind: FilterInclude, Names: toSet(names)}
}

// ExcludeFilter admits every name except the given ones.
func ExcludeFilter(names ...string) ToolFilter {
	return ToolFilter{Kind: FilterExclude, Names: toSet(names)}
}

func (f ToolFilter) Admits(name string) bool {
	switch f.Kind {
	case FilterInclude:
		return f.Names[name]
	case FilterExclude:
		return !f.Names[name]
	default:
		return true
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// VisibilityKind discriminates the ToolVisibility variants from spec.md §4.2.
type VisibilityKind string

const (
	VisibilityAll       VisibilityKind = "all"
	VisibilityWhitelist VisibilityKind = "whitelist"
	VisibilityBlacklist VisibilityKind = "blacklist"
	VisibilityReadOnly  VisibilityKind = "read_only"
)

// ToolVisibility filters the aggregated schema list before it is sent to
// the model, applied after Registry aggregation.
type ToolVisibility struct {
	Kind  VisibilityKind
	Names map[string]bool
}

func AllVisibility() ToolVisibility { return ToolVisibility{Kind: VisibilityAll} }

func WhitelistVisibility(names ...string) ToolVisibility {
	return ToolVisibility{Kind: VisibilityWhitelist, Names: toSet(names)}
}

func BlacklistVisibility(names ...string) ToolVisibility {
	return ToolVisibility{Kind: VisibilityBlacklist, Names: toSet(names)}
}

func ReadOnlyVisibility() ToolVisibility { return ToolVisibility{Kind: VisibilityReadOnly} }

// Apply filters schemas per the visibility policy.
func (v ToolVisibility) Apply(schemas []ToolSchema) []ToolSchema {
	switch v.Kind {
	case VisibilityWhitelist:
		out := make([]ToolSchema, 0, len(schemas))
		for _, s := range schemas {
			if v.Names[s.Name] {
				out = append(out, s)
			}
		}
		return out
	case VisibilityBlacklist:
		out := make([]ToolSchema, 0, len(schemas))
		for _, s := range schemas {
			if !v.Names[s.Name] {
				out = append(out, s)
			}
		}
		return out
	case VisibilityReadOnly:
		out := make([]ToolSchema, 0, len(schemas))
		for _, s := range schemas {
			if s.ReadOnly {
				out = append(out, s)
			}
		}
		return out
	default:
		return schemas
	}
}
