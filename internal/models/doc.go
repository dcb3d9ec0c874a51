// Package models defines the domain entities shared by the flickx packages.
//
// The package contains two groups of types:
//
// 1. Catalog records as returned by the movie metadata API
//   - [Movie] : list and detail record, also stored verbatim in the watchlist
//   - [CastMember] : a credited actor
//   - [MovieDetail] : a [Movie] plus its leading cast
//   - [MoviePage] : one page of a listing or search
//   - [Category] : the listing categories the catalog exposes
//
// 2. Session entities
//   - [Identity] : the authenticated user
//   - [Role] : standard or admin
//
// Keeping these here lets the watchlist and the catalog gateway share records without depending on each other.
package models
