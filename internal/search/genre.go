package search

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/releasebot/internal/domain"
)

// GenreIndex keeps the current genre taxonomy per media kind and resolves
// configured genre names against it. Safe for concurrent use.
type GenreIndex struct {
	mu     sync.RWMutex
	kinds  map[domain.MediaKind]*kindIndex
	logger *slog.Logger
}

// kindIndex holds one taxonomy with pre-computed lowercase names
type kindIndex struct {
	taxonomy   *domain.GenreTaxonomy
	ids        []int
	lowerNames []string
}

// NewGenreIndex creates an empty index
func NewGenreIndex(logger *slog.Logger) *GenreIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenreIndex{
		kinds:  make(map[domain.MediaKind]*kindIndex),
		logger: logger,
	}
}

// Set replaces the taxonomy for a kind
func (g *GenreIndex) Set(kind domain.MediaKind, names map[int]string) {
	idx := &kindIndex{
		taxonomy:   domain.NewGenreTaxonomy(kind, names),
		ids:        make([]int, 0, len(names)),
		lowerNames: make([]string, 0, len(names)),
	}
	// Stable order so fuzzy ties resolve the same way every time
	for id := range names {
		idx.ids = append(idx.ids, id)
	}
	sort.Ints(idx.ids)
	for _, id := range idx.ids {
		idx.lowerNames = append(idx.lowerNames, strings.ToLower(strings.TrimSpace(names[id])))
	}

	g.mu.Lock()
	g.kinds[kind] = idx
	g.mu.Unlock()

	g.logger.Debug("indexed genres", "kind", kind, "count", len(idx.ids))
}

// Taxonomy returns the taxonomy for a kind, nil when none is loaded
func (g *GenreIndex) Taxonomy(kind domain.MediaKind) *domain.GenreTaxonomy {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if idx, ok := g.kinds[kind]; ok {
		return idx.taxonomy
	}
	return nil
}

// Loaded reports whether a taxonomy is present for a kind
func (g *GenreIndex) Loaded(kind domain.MediaKind) bool {
	return g.Taxonomy(kind).Len() > 0
}

// Name returns the display name of a genre id
func (g *GenreIndex) Name(kind domain.MediaKind, id int) (string, bool) {
	return g.Taxonomy(kind).Name(id)
}

// Lookup resolves a genre display name to its id.
// Exact (case-insensitive) matches win, then the closest name containing the
// query, then a name within a small edit distance.
func (g *GenreIndex) Lookup(kind domain.MediaKind, name string) (int, bool) {
	g.mu.RLock()
	idx, ok := g.kinds[kind]
	g.mu.RUnlock()
	if !ok {
		return 0, false
	}

	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return 0, false
	}

	if id, ok := idx.taxonomy.ID(query); ok {
		return id, true
	}

	if matches := fuzzy.RankFindNormalizedFold(query, idx.lowerNames); len(matches) > 0 {
		sort.Sort(matches)
		return idx.ids[matches[0].OriginalIndex], true
	}

	best, bestDist := -1, 0
	maxTypos := allowedTypos(len([]rune(query)))
	for i, candidate := range idx.lowerNames {
		dist := fuzzy.LevenshteinDistance(query, candidate)
		if dist > maxTypos {
			continue
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		return idx.ids[best], true
	}
	return 0, false
}

// allowedTypos returns the number of typos allowed based on word length
func allowedTypos(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 6:
		return 1
	default:
		return 2
	}
}
