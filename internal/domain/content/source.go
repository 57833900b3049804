package content

// Source defines the contract for loading essay card sets. The reader's
// content lives outside this subsystem; a Source is how it gets supplied.
type Source interface {
	// LoadSets returns every card set, one per essay.
	LoadSets() ([]Set, error)
}
