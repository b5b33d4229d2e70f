package rawg

type gamesResponse struct {
	Count   int            `json:"count"`
	Next    *string        `json:"next"`
	Results []gameResponse `json:"results"`
}

type gameResponse struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	BackgroundImage *string         `json:"background_image"`
	Released        *string         `json:"released"`
	TBA             bool            `json:"tba"`
	Platforms       []platformEntry `json:"platforms"`
	Genres          []namedResponse `json:"genres"`
	Developers      []namedResponse `json:"developers"`
	Rating          float64         `json:"rating"`
	RatingsCount    int             `json:"ratings_count"`
	Playtime        int             `json:"playtime"`
	DescriptionRaw  string          `json:"description_raw"`
}

type platformEntry struct {
	Platform *namedResponse `json:"platform"`
}

type namedResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type screenshotsResponse struct {
	Count   int                `json:"count"`
	Results []screenshotResult `json:"results"`
}

type screenshotResult struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

type reviewsResponse struct {
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
	Results []reviewResponse `json:"results"`
}

type reviewResponse struct {
	ID        int              `json:"id"`
	GameName  string           `json:"gameName"`
	User      *reviewUser      `json:"user"`
	Rating    float64          `json:"rating"`
	Text      *string          `json:"text"`
	Created   string           `json:"created"`
	Reactions *reviewReactions `json:"reactions"`
}

type reviewUser struct {
	Username string  `json:"username"`
	Avatar   *string `json:"avatar"`
}

type reviewReactions struct {
	Like    *int `json:"like"`
	Dislike *int `json:"dislike"`
}
