package identity

import (
	"sort"

	"github.com/carebus/carebus/internal/platform/memstore"
)

// UserRepoMem is the in-memory UserRepository.
type UserRepoMem struct {
	coll *memstore.Collection[User]
}

func NewUserRepoMem() *UserRepoMem {
	return &UserRepoMem{coll: memstore.NewCollection[User]()}
}

func (r *UserRepoMem) Create(u User) (User, error) {
	return r.coll.Insert(u, func(existing User) bool { return existing.Phone == u.Phone })
}

func (r *UserRepoMem) Get(id string) (User, error) {
	return r.coll.Get(id)
}

func (r *UserRepoMem) FindByPhone(phone string) (User, bool) {
	return r.coll.Find(func(u User) bool { return u.Phone == phone })
}

func (r *UserRepoMem) List() []User {
	users := r.coll.List(nil)
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users
}
