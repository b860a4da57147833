package domain

// Store handles the process-wide durable state (BoltDB + memory):
// chat subscriptions, result lists and the genre cache.
type Store interface {
	// === Result lists ===
	CreateList(caption string, items []Record) (string, error)
	GetList(id string) (ResultList, error) // ErrListNotFound when unknown
	ListCount() int

	// === Subscriptions ===
	Subscribe(chatID int64) (bool, error)   // true when newly subscribed
	Unsubscribe(chatID int64) (bool, error) // true when a subscription was removed
	Subscribers() []int64
	SubscriberCount() int

	// === Genre cache ===
	SaveGenres(kind MediaKind, names map[int]string) error
	LoadGenres(kind MediaKind) (map[int]string, bool)

	Close() error
}
