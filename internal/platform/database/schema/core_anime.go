package schema

// CoreAnimeTable represents the 'core.anime' table
type CoreAnimeTable struct {
	Table         string
	ID            string
	KitsuID       string
	Slug          string
	TitleEnglish  string
	TitleRomaji   string
	TitleJapanese string
	Format        string
	EpisodeCount  string
	EpisodeLength string
	Season        string
	SeasonYear    string
	StartDate     string
	EndDate       string
	Synopsis      string
	Rating        string
	Popularity    string
	Status        string
	CoverImage    string
	BannerImage   string
	CreatedAt     string
	UpdatedAt     string
}

// CoreAnime is the schema definition for core.anime
var CoreAnime = CoreAnimeTable{
	Table:         "core.anime",
	ID:            "id",
	KitsuID:       "kitsu_id",
	Slug:          "slug",
	TitleEnglish:  "title_english",
	TitleRomaji:   "title_romaji",
	TitleJapanese: "title_japanese",
	Format:        "format",
	EpisodeCount:  "episode_count",
	EpisodeLength: "episode_length",
	Season:        "season",
	SeasonYear:    "season_year",
	StartDate:     "start_date",
	EndDate:       "end_date",
	Synopsis:      "synopsis",
	Rating:        "rating",
	Popularity:    "popularity",
	Status:        "status",
	CoverImage:    "cover_image",
	BannerImage:   "banner_image",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

func (t CoreAnimeTable) UpsertColumns() []string {
	return []string{
		t.KitsuID, t.Slug,
		t.TitleEnglish, t.TitleRomaji, t.TitleJapanese,
		t.Format, t.EpisodeCount, t.EpisodeLength,
		t.Season, t.SeasonYear, t.StartDate, t.EndDate,
		t.Synopsis, t.Rating, t.Popularity, t.Status,
		t.CoverImage, t.BannerImage,
	}
}
