package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore) error

// WithSeedFile loads an initial opportunity set from a JSON file.
func WithSeedFile(path string) Option {
	return func(s *MemStore) error {
		if path == "" {
			return nil
		}
		return s.loadSeedFile(path)
	}
}

// WithOpportunities seeds the store with an initial opportunity set.
func WithOpportunities(opps []Opportunity) Option {
	return func(s *MemStore) error {
		for _, opp := range opps {
			s.opps[opp.ID] = opp
		}
		return nil
	}
}
