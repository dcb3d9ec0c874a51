// Package services defines the [Catalog] interface for movie metadata and implements it against TMDB.
//
// # Catalog Interface
//
// Presentation code (CLI, HTTP surface, terminal UI) depends on [Catalog] so it can be driven by a
// test double. The interface covers category listings, search, detail with leading cast, and image URLs.
//
// # TMDB Implementation
//
// [TMDBService] talks to the TMDB v3 REST API. It authenticates with either a v3 API key, sent as the
// api_key query parameter, or a v4 read access token sent as a bearer token by an [oauth2] client.
//
// Movie detail and credits are requested in parallel with an errgroup. A failed credits request is
// tolerated and leaves the cast empty; a failed detail request is not.
//
// # Error Handling
//
// Failures wrap sentinels from the shared package:
//   - [shared.ErrFetchMovies] : category listing failed
//   - [shared.ErrSearchFailed] : search failed
//   - [shared.ErrMovieNotFound] : detail lookup failed
//   - [shared.ErrInvalidCategory], [shared.ErrInvalidArgument] : rejected before any request
//   - [shared.ErrMissingCredentials] : neither key nor token configured
//
// There are no retries and no caching.
package services
