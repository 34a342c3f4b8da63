package emergency

import (
	"sort"

	"github.com/carebus/carebus/internal/platform/memstore"
)

// CaseRepoMem is the in-memory CaseRepository.
type CaseRepoMem struct {
	coll *memstore.Collection[Case]
}

func NewCaseRepoMem() *CaseRepoMem {
	return &CaseRepoMem{coll: memstore.NewCollection[Case]()}
}

func (r *CaseRepoMem) Upsert(c Case) Case {
	return r.coll.Upsert(c)
}

func (r *CaseRepoMem) Get(id string) (Case, error) {
	return r.coll.Get(id)
}

func (r *CaseRepoMem) Mutate(id string, fn func(Case) (Case, error)) (Case, error) {
	return r.coll.Mutate(id, fn)
}

func (r *CaseRepoMem) List() []Case {
	cases := r.coll.List(nil)
	sort.Slice(cases, func(i, j int) bool { return cases[i].CreatedAt.Before(cases[j].CreatedAt) })
	return cases
}
