package handlers

import (
	"github.com/sharehub/sharehub/sharehub"
	"github.com/sharehub/sharehub/sharehub/auth"
	"github.com/sharehub/sharehub/sharehub/claims"
	"github.com/sharehub/sharehub/sharehub/database"
	"github.com/sharehub/sharehub/sharehub/database/repositories"
	"github.com/sharehub/sharehub/sharehub/services"
)

// WebApp carries the dependencies every handler needs
type WebApp struct {
	Config       *sharehub.Config
	DB           *database.DB
	Listings     repositories.ListingRepository
	Claims       repositories.ClaimRepository
	ClaimService *claims.Service
	Resolver     auth.Resolver
	Storage      *services.StorageService
	Version      string
	Commit       string
}
