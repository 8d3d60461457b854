package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisetsu-app/kisetsu/internal/platform/database/schema"
	"github.com/kisetsu-app/kisetsu/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) FindAnimeIDByKitsuID(ctx context.Context, kitsuID string) (int, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CoreAnime.ID, schema.CoreAnime.Table, schema.CoreAnime.KitsuID)

	var id int
	err := repository.db.QueryRow(ctx, query, kitsuID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, dberr.Wrap(err, "find_anime_by_kitsu_id")
	}
	return id, true, nil
}

func (repository *PostgresRepository) InsertAnime(ctx context.Context, anime *Anime) (int, error) {
	columns := schema.CoreAnime.UpsertColumns()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		schema.CoreAnime.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		schema.CoreAnime.ID,
	)

	// The raw error chain is preserved here: the service layer classifies
	// unique violations itself to drive slug-collision recovery.
	var id int
	err := repository.db.QueryRow(ctx, query, animeArgs(anime)...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert_anime: %w", err)
	}
	return id, nil
}

func (repository *PostgresRepository) UpdateAnime(ctx context.Context, id int, anime *Anime) error {
	columns := schema.CoreAnime.UpsertColumns()
	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s, %s = NOW() WHERE %s = $%d`,
		schema.CoreAnime.Table,
		strings.Join(assignments, ", "),
		schema.CoreAnime.UpdatedAt,
		schema.CoreAnime.ID, len(columns)+1,
	)

	args := append(animeArgs(anime), id)
	tag, err := repository.db.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_anime")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// animeArgs orders values to match schema.CoreAnime.UpsertColumns().
func animeArgs(anime *Anime) []any {
	return []any{
		anime.KitsuID, anime.Slug,
		anime.TitleEnglish, anime.TitleRomaji, anime.TitleJapanese,
		anime.Format, anime.EpisodeCount, anime.EpisodeLength,
		anime.Season, anime.SeasonYear, anime.StartDate, anime.EndDate,
		anime.Synopsis, anime.Rating, anime.Popularity, anime.Status,
		anime.CoverImage, anime.BannerImage,
	}
}

func (repository *PostgresRepository) FindGenreBySlug(ctx context.Context, slug string) (*Genre, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.CoreGenre.ID, schema.CoreGenre.Name, schema.CoreGenre.Slug,
		schema.CoreGenre.Table, schema.CoreGenre.Slug)

	genre := &Genre{}
	err := repository.db.QueryRow(ctx, query, slug).Scan(&genre.ID, &genre.Name, &genre.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_genre_by_slug")
	}
	return genre, nil
}

func (repository *PostgresRepository) InsertGenre(ctx context.Context, genre *Genre) (int, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		schema.CoreGenre.Table, schema.CoreGenre.Name, schema.CoreGenre.Slug, schema.CoreGenre.ID)

	// Raw chain preserved for 23505 classification, same as InsertAnime.
	var id int
	err := repository.db.QueryRow(ctx, query, genre.Name, genre.Slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert_genre: %w", err)
	}
	return id, nil
}

func (repository *PostgresRepository) LinkAnimeGenres(ctx context.Context, animeID int, genreIDs []int) (int, error) {
	if len(genreIDs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, unnest($2::int[])
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		schema.CoreAnimeGenre.Table,
		schema.CoreAnimeGenre.AnimeID, schema.CoreAnimeGenre.GenreID,
		schema.CoreAnimeGenre.AnimeID, schema.CoreAnimeGenre.GenreID,
	)

	tag, err := repository.db.Exec(ctx, query, animeID, genreIDs)
	if err != nil {
		return 0, dberr.Wrap(err, "link_anime_genres")
	}
	return int(tag.RowsAffected()), nil
}
