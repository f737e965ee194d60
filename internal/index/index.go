package index

// PageIndex defines the interface for site index operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type PageIndex interface {
	UpsertPage(row PageRow, body string, links []string) error
	DeletePage(path string) error
	GetPage(path string) (*PageRow, string, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPages(limit, offset int, collection, tag string) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]string, error)
	BrokenLinks() ([]Link, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
