package client

import (
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
)

// SortOption selects the presentation order for Query results.
type SortOption string

const (
	// SortByDate orders newest first (the default).
	SortByDate SortOption = "date"
	// SortByTitle orders alphabetically by title.
	SortByTitle SortOption = "title"
	// SortByDomain orders alphabetically by domain.
	SortByDomain SortOption = "domain"
	// SortByLastRead orders most recently read first.
	SortByLastRead SortOption = "lastRead"
)

// Query returns a filtered, sorted copy of the mirror. The filter is a
// case-insensitive substring match over title, description, domain, and URL.
func (e *Engine) Query(search string, sortBy SortOption) []domain.Item {
	items := e.Items()

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle != "" {
		filtered := items[:0]
		for _, item := range items {
			if matches(item, needle) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	sortItems(items, sortBy)
	return items
}

// matches reports whether the item's searchable text contains needle.
func matches(item domain.Item, needle string) bool {
	hay := strings.ToLower(strings.Join([]string{
		deref(item.Title), deref(item.Description), item.Domain, item.URL,
	}, " "))
	return strings.Contains(hay, needle)
}

// sortItems orders items in place per the sort option.
func sortItems(items []domain.Item, sortBy SortOption) {
	switch sortBy {
	case SortByTitle:
		sort.SliceStable(items, func(i, j int) bool {
			return deref(items[i].Title) < deref(items[j].Title)
		})
	case SortByDomain:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Domain < items[j].Domain
		})
	case SortByLastRead:
		sort.SliceStable(items, func(i, j int) bool {
			// Never-read items sink to the end.
			if items[i].ReadAt == nil {
				return false
			}
			if items[j].ReadAt == nil {
				return true
			}
			return items[i].ReadAt.After(*items[j].ReadAt)
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
