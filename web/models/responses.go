package models

import (
	dbmodels "github.com/sharehub/sharehub/sharehub/database/models"
)

// ListResponse is the envelope for every collection read: items plus a count,
// newest-first.
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// ErrorResponse is the envelope for every rejection. ClaimedBy is only set on
// already-claimed rejections; Type carries an error-kind tag on 500s.
type ErrorResponse struct {
	Error     string `json:"error"`
	Type      string `json:"type,omitempty"`
	ClaimedBy string `json:"claimedBy,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClaimResponse is the success body of the claim operation: the created claim
// row and the listing as it reads after the transition.
type ClaimResponse struct {
	Message string            `json:"message"`
	Claim   *dbmodels.Claim   `json:"claim"`
	Listing *dbmodels.Listing `json:"listing"`
}

// UploadResponse is the result of an image upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// StatsResponse summarizes listing counts for the dashboard.
type StatsResponse struct {
	TotalListings   int            `json:"totalListings"`
	ActiveListings  int            `json:"activeListings"`
	ClaimedListings int            `json:"claimedListings"`
	Categories      map[string]int `json:"categories"`
}

// UserStatsResponse summarizes one user's activity.
type UserStatsResponse struct {
	TotalListings int `json:"totalListings"`
	TotalClaims   int `json:"totalClaims"`
}

func NewListResponse(items interface{}, count int) *ListResponse {
	return &ListResponse{Items: items, Count: count}
}
