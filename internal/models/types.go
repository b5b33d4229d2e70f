package models

import (
	"strings"
	"time"
)

// Game is a catalog entry as the rest of the app sees it. Absent upstream
// fields are zero values; use the Has helpers instead of comparing directly.
type Game struct {
	ID           int
	Name         string
	CoverImage   string
	Released     string
	Platforms    []string
	Genres       []string
	Rating       float64
	RatingsCount int
	Playtime     int
	Description  string
	Developers   []string
}

func (g Game) HasCover() bool       { return g.CoverImage != "" }
func (g Game) HasReleaseDate() bool { return g.Released != "" }
func (g Game) HasPlaytime() bool    { return g.Playtime > 0 }
func (g Game) HasDescription() bool { return strings.TrimSpace(g.Description) != "" }

type GamePage struct {
	Games []Game
	Count int
	Next  string
}

// GameQuery describes a catalog list request. Empty fields are omitted from
// the upstream query string.
type GameQuery struct {
	PageSize  int
	DateStart string
	DateEnd   string
	Ordering  string
	Rating    string
}

func (q GameQuery) Dates() string {
	if q.DateStart == "" || q.DateEnd == "" {
		return ""
	}
	return q.DateStart + "," + q.DateEnd
}

type Screenshot struct {
	ID    int
	Image string
}

type Reactions struct {
	Like    int
	Dislike int
}

type Review struct {
	ID        int
	GameName  string
	Author    string
	Avatar    string
	Rating    float64
	Text      string
	Created   time.Time
	Reactions *Reactions
}

type ReviewPage struct {
	Reviews    []Review
	TotalCount int
	NextPage   string
}

func (p ReviewPage) HasMore() bool { return p.NextPage != "" }

type UserMetadata struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Picture   string `json:"picture,omitempty"`
}

type AuthUser struct {
	ID       string       `json:"id"`
	Email    string       `json:"email"`
	Metadata UserMetadata `json:"user_metadata"`
}

// AuthSession is the provider-issued session. The app keeps it only to
// display the user and to refresh or revoke it.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         AuthUser  `json:"user"`
}

func (s AuthSession) Valid() bool {
	return s.AccessToken != "" && s.User.ID != ""
}

func (s AuthSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now)
}

// UserDisplay is what the page shows for the signed-in user.
type UserDisplay struct {
	Authenticated bool
	Name          string
	Email         string
	Avatar        string
}

func (d UserDisplay) ShowProtected() bool { return d.Authenticated }
func (d UserDisplay) ShowGuest() bool     { return !d.Authenticated }
