package services

import (
	"testing"

	"github.com/sharehub/sharehub/sharehub/database/models"
)

func TestRankListings(t *testing.T) {
	listings := []*models.Listing{
		{ID: "a", Title: "Graphing calculator", Description: "TI-84, lightly used"},
		{ID: "b", Title: "Desk lamp", Description: "warm white LED"},
		{ID: "c", Title: "Calculus textbook", Description: "Stewart 8th edition", CreatedByName: "Dana"},
	}

	ranked := RankListings(listings, "calc")
	if len(ranked) == 0 {
		t.Fatal("RankListings() returned no matches for calc")
	}
	for _, l := range ranked {
		if l.ID == "b" {
			t.Error("desk lamp should not match calc")
		}
	}
}

func TestRankListingsEmptyQuery(t *testing.T) {
	listings := []*models.Listing{
		{ID: "a", Title: "Desk lamp"},
		{ID: "b", Title: "Mini fridge"},
	}

	for _, query := range []string{"", "   "} {
		ranked := RankListings(listings, query)
		if len(ranked) != len(listings) {
			t.Errorf("RankListings(%q) length = %d, want %d", query, len(ranked), len(listings))
		}
		for i := range ranked {
			if ranked[i] != listings[i] {
				t.Errorf("RankListings(%q) reordered input at %d", query, i)
			}
		}
	}
}

func TestRankListingsMatchesCreatorName(t *testing.T) {
	listings := []*models.Listing{
		{ID: "a", Title: "Desk lamp", CreatedByName: "Priya Sharma"},
		{ID: "b", Title: "Mini fridge", CreatedByName: "Alex Chen"},
	}

	ranked := RankListings(listings, "priya")
	if len(ranked) != 1 || ranked[0].ID != "a" {
		t.Errorf("RankListings(priya) = %v listings, want only a", len(ranked))
	}
}

func TestRankListingsNoMatches(t *testing.T) {
	listings := []*models.Listing{
		{ID: "a", Title: "Desk lamp"},
	}

	if ranked := RankListings(listings, "zzzzqqqq"); len(ranked) != 0 {
		t.Errorf("RankListings() = %d matches, want 0", len(ranked))
	}
}
