package identity

// UserRepository is the storage contract for accounts.
type UserRepository interface {
	// Create inserts the account unless one already holds the same phone
	// number; the lookup and insert are a single atomic operation.
	Create(u User) (User, error)
	Get(id string) (User, error)
	FindByPhone(phone string) (User, bool)
	List() []User
}
