package schema

// CoreAnimeGenreTable represents the 'core.anime_genre' junction table.
// Uniqueness is enforced on the (anime_id, genre_id) pair.
type CoreAnimeGenreTable struct {
	Table   string
	AnimeID string
	GenreID string
}

// CoreAnimeGenre is the schema definition for core.anime_genre
var CoreAnimeGenre = CoreAnimeGenreTable{
	Table:   "core.anime_genre",
	AnimeID: "anime_id",
	GenreID: "genre_id",
}
