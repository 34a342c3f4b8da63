package emergency

// CaseRepository is the storage contract for emergency cases.
type CaseRepository interface {
	Upsert(c Case) Case
	Get(id string) (Case, error)
	Mutate(id string, fn func(Case) (Case, error)) (Case, error)
	List() []Case
}
