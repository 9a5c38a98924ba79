package services

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sharehub/sharehub/sharehub/database/models"
)

// ListingSearchItems implements fuzzy.Source over listings.
type ListingSearchItems []*models.Listing

func (items ListingSearchItems) Len() int {
	return len(items)
}

// String returns the searchable text at index i.
func (items ListingSearchItems) String(i int) string {
	l := items[i]
	return strings.ToLower(l.Title + " " + l.Description + " " + l.CreatedByName)
}

// RankListings filters and orders listings by fuzzy relevance to query.
// An empty query returns the input unchanged.
func RankListings(listings []*models.Listing, query string) []*models.Listing {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return listings
	}

	matches := fuzzy.FindFrom(query, ListingSearchItems(listings))

	ranked := make([]*models.Listing, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, listings[m.Index])
	}
	return ranked
}
