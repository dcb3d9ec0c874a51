package models

import (
	"fmt"
	"strings"
)

// MaxPages is the highest page the upstream catalog will serve for any listing.
const MaxPages = 500

// MaxCast is the number of cast members kept on a [MovieDetail].
const MaxCast = 6

// Genre is a named genre attached to a detail record.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog item. List endpoints fill the common fields; the detail endpoint also fills the optional ones.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`

	Runtime  int     `json:"runtime,omitempty"`
	Tagline  string  `json:"tagline,omitempty"`
	Status   string  `json:"status,omitempty"`
	Homepage string  `json:"homepage,omitempty"`
	IMDbID   string  `json:"imdb_id,omitempty"`
	Budget   int64   `json:"budget,omitempty"`
	Revenue  int64   `json:"revenue,omitempty"`
	Genres   []Genre `json:"genres,omitempty"`
}

// Year returns the four digit release year, or "" when the release date is unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// GenreNames joins the detail genres with ", ".
func (m Movie) GenreNames() string {
	names := make([]string, len(m.Genres))
	for i, g := range m.Genres {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

// CastMember is one credited actor of a movie.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// MovieDetail pairs a detail record with at most [MaxCast] cast members.
type MovieDetail struct {
	Movie
	Cast []CastMember `json:"cast"`
}

// MoviePage is one page of a category listing or search.
type MoviePage struct {
	Results      []Movie `json:"results"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Category selects a catalog listing.
type Category string

const (
	CategoryPopular    Category = "popular"
	CategoryTopRated   Category = "top_rated"
	CategoryNowPlaying Category = "now_playing"
	CategoryUpcoming   Category = "upcoming"
)

// Categories lists every [Category] in display order.
var Categories = []Category{CategoryPopular, CategoryTopRated, CategoryNowPlaying, CategoryUpcoming}

// Valid reports whether c is one of [Categories].
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is the human readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryPopular:
		return "Popular"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryNowPlaying:
		return "Now Playing"
	case CategoryUpcoming:
		return "Upcoming"
	default:
		return string(c)
	}
}

// Next returns the category after c in [Categories], wrapping around.
func (c Category) Next() Category {
	for i, known := range Categories {
		if c == known {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return CategoryPopular
}

// ParseCategory converts s into a [Category], failing for unknown names.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Role is an authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the authenticated user. Name is persisted as "username" to keep stored records readable by older builds.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"username"`
	Role  Role   `json:"role"`
}

// Validate checks the fields every stored identity must carry.
func (i Identity) Validate() error {
	switch {
	case i.ID == "":
		return fmt.Errorf("identity: missing id")
	case i.Email == "":
		return fmt.Errorf("identity: missing email")
	case i.Role != RoleUser && i.Role != RoleAdmin:
		return fmt.Errorf("identity: unknown role %q", i.Role)
	}
	return nil
}

// IsAdmin reports whether the identity carries [RoleAdmin].
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
