// Package source defines the normalized link model and the contract every upstream
// adapter satisfies.
package source

import (
	"context"

	"github.com/anisan-cli/anifeed/promise"
)

// Source is one upstream provider.
//
// Every method issues a single upstream call and maps each decoded record to exactly
// one link. A record that cannot be mapped fails the whole call.
// Implementations hold configuration only; they never store the links they produce.
type Source interface {
	// ID returns the stable identifier that links carry back to their producer.
	ID() string

	// Name returns a human readable name.
	Name() string

	// Featured lists the provider's popular or trending entries.
	Featured(ctx context.Context) *promise.Promise[[]AnimeLink]

	// Latest lists recently updated entries.
	Latest(ctx context.Context) *promise.Promise[[]AnimeLink]

	// Search lists entries matching query.
	Search(ctx context.Context, query string) *promise.Promise[[]AnimeLink]

	// Episodes lists the episodes of anime.
	Episodes(ctx context.Context, anime AnimeLink) *promise.Promise[[]EpisodeLink]
}
