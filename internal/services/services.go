// package services defines the interfaces the archive pipeline uses to reach remote hosts
package services

import (
	"context"

	"github.com/desertthunder/cfx/internal/models"
)

// FeedService resolves accounts and pages through their timelines.
type FeedService interface {
	// GetUser resolves a user code to an account.
	GetUser(ctx context.Context, userCode string) (*models.Account, error)

	// GetTimeline returns one zero-indexed page of an account's posts.
	GetTimeline(ctx context.Context, userID, page int) ([]models.Post, error)
}

// MediaFetcher retrieves the bytes of a single asset reference.
type MediaFetcher interface {
	Fetch(ctx context.Context, reference string) ([]byte, error)
}
