package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList is a JSON array of strings stored in a text column. Rows written
// before the array migration may hold a bare string; Scan treats a non-empty
// scalar as a one-element list.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err == nil {
		*l = out
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			*l = nil
		} else {
			*l = StringList{s}
		}
		return nil
	}
	// legacy scalar stored without quoting
	if s := string(raw); s != "" {
		*l = StringList{s}
	} else {
		*l = nil
	}
	return nil
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	IsVerified         bool       `gorm:"default:false" json:"is_verified"`
	VerificationToken  string     `gorm:"index" json:"-"`
	VerificationExpiry *time.Time `json:"-"`
	ResetToken         string     `gorm:"index" json:"-"`
	ResetExpiry        *time.Time `json:"-"`

	Groups []Group `gorm:"many2many:group_members" json:"groups,omitempty"`
}

type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string `gorm:"not null" json:"name"`
	CreatedByID    uint   `gorm:"index;not null" json:"created_by_id"`
	IsPublic       bool   `gorm:"default:false" json:"is_public"`
	Slug           string `gorm:"uniqueIndex;default:null" json:"slug,omitempty"`
	Description    string `json:"description"`
	CoverImagePath string `json:"cover_image_path"`

	Members []User `gorm:"many2many:group_members" json:"members,omitempty"`
}

type GroupInviteStatus string

const (
	InvitePending  GroupInviteStatus = "pending"
	InviteAccepted GroupInviteStatus = "accepted"
	InviteRejected GroupInviteStatus = "rejected"
)

type GroupInvite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GroupID       uint              `gorm:"index;not null" json:"group_id"`
	Group         Group             `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
	InvitedByID   uint              `gorm:"not null" json:"invited_by_id"`
	InvitedUserID uint              `gorm:"index;not null" json:"invited_user_id"`
	Status        GroupInviteStatus `gorm:"default:pending" json:"status"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

type MovieMondayStatus string

const (
	StatusPending    MovieMondayStatus = "pending"
	StatusInProgress MovieMondayStatus = "in-progress"
	StatusCompleted  MovieMondayStatus = "completed"
)

// MaxSelections is the candidate cap per movie monday; hitting it moves the
// event from pending to in-progress.
const MaxSelections = 3

type MovieMonday struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Date         time.Time         `gorm:"not null;uniqueIndex:idx_group_date" json:"date"`
	GroupID      uint              `gorm:"not null;uniqueIndex:idx_group_date" json:"group_id"`
	Group        Group             `gorm:"constraint:OnDelete:CASCADE" json:"group,omitempty"`
	PickerUserID uint              `gorm:"not null" json:"picker_user_id"`
	Status       MovieMondayStatus `gorm:"default:pending" json:"status"`
	IsPublic     bool              `gorm:"default:false" json:"is_public"`
	Slug         string            `gorm:"default:null" json:"slug,omitempty"`
	WeekTheme    string            `json:"week_theme"`
	LikesCount   int               `gorm:"default:0" json:"likes_count"`

	Selections   []MovieSelection         `json:"selections,omitempty"`
	EventDetails *MovieMondayEventDetails `json:"event_details,omitempty"`
}

type MovieSelection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MovieMondayID uint       `gorm:"not null;uniqueIndex:idx_monday_movie" json:"movie_monday_id"`
	TmdbMovieID   int64      `gorm:"not null;uniqueIndex:idx_monday_movie" json:"tmdb_movie_id"`
	Title         string     `gorm:"not null" json:"title"`
	PosterPath    string     `json:"poster_path"`
	IsWinner      bool       `gorm:"default:false" json:"is_winner"`
	Genres        StringList `gorm:"type:text" json:"genres"`
	ReleaseYear   int        `json:"release_year"`

	Cast []MovieCast `gorm:"foreignKey:MovieSelectionID;constraint:OnDelete:CASCADE" json:"cast,omitempty"`
	Crew []MovieCrew `gorm:"foreignKey:MovieSelectionID;constraint:OnDelete:CASCADE" json:"crew,omitempty"`
}

type MovieCast struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	MovieSelectionID uint   `gorm:"index;not null" json:"movie_selection_id"`
	ActorID          int64  `json:"actor_id"`
	Name             string `json:"name"`
	Character        string `json:"character"`
	ProfilePath      string `json:"profile_path"`
	SortOrder        int    `json:"sort_order"`
}

type MovieCrew struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	MovieSelectionID uint   `gorm:"index;not null" json:"movie_selection_id"`
	PersonID         int64  `json:"person_id"`
	Name             string `json:"name"`
	Job              string `json:"job"`
	ProfilePath      string `json:"profile_path"`
}

type MovieMondayEventDetails struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MovieMondayID uint       `gorm:"uniqueIndex;not null" json:"movie_monday_id"`
	Meals         StringList `gorm:"type:text" json:"meals"`
	Cocktails     StringList `gorm:"type:text" json:"cocktails"`
	Desserts      StringList `gorm:"type:text" json:"desserts"`
	Notes         string     `json:"notes"`
}

// DefaultCategoryName is created for every user at registration and is the
// target of quick-add operations. It cannot be deleted while it is the user's
// only category.
const DefaultCategoryName = "My Watchlist"

type WatchlistCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         uint   `gorm:"not null;uniqueIndex:idx_user_category_name" json:"user_id"`
	Name           string `gorm:"not null;uniqueIndex:idx_user_category_name" json:"name"`
	Description    string `json:"description"`
	IsPublic       bool   `gorm:"default:false" json:"is_public"`
	Slug           string `gorm:"default:null" json:"slug,omitempty"`
	LikesCount     int    `gorm:"default:0" json:"likes_count"`
	CoverImagePath string `json:"cover_image_path"`

	Items []WatchlistItem `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type WatchlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CategoryID  uint       `gorm:"not null;uniqueIndex:idx_category_movie" json:"category_id"`
	TmdbMovieID int64      `gorm:"not null;uniqueIndex:idx_category_movie" json:"tmdb_movie_id"`
	Title       string     `gorm:"not null" json:"title"`
	PosterPath  string     `json:"poster_path"`
	SortOrder   int        `gorm:"default:0" json:"sort_order"`
	UserNote    string     `json:"user_note"`
	UserRating  *float64   `json:"user_rating"`
	Watched     bool       `gorm:"default:false" json:"watched"`
	WatchedDate *time.Time `json:"watched_date"`
	IsWinner    bool       `gorm:"default:false" json:"is_winner"`
}

type WatchlistLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CategoryID uint `gorm:"not null;uniqueIndex:idx_category_user_like" json:"category_id"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_category_user_like" json:"user_id"`
}

// ContentType tags the owner of a comment section.
type ContentType string

const (
	ContentMovie       ContentType = "movie"
	ContentWatchlist   ContentType = "watchlist"
	ContentMovieMonday ContentType = "moviemonday"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentMovie, ContentWatchlist, ContentMovieMonday:
		return true
	}
	return false
}

type CommentSection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ContentType   ContentType `gorm:"not null;uniqueIndex:idx_section_target" json:"content_type"`
	ContentID     int64       `gorm:"not null;uniqueIndex:idx_section_target" json:"content_id"`
	TotalComments int         `gorm:"default:0" json:"total_comments"`
	IsActive      bool        `gorm:"default:true" json:"is_active"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SectionID       uint   `gorm:"index;not null" json:"section_id"`
	UserID          uint   `gorm:"index;not null" json:"user_id"`
	ParentCommentID *uint  `gorm:"index" json:"parent_comment_id"`
	Content         string `gorm:"not null" json:"content"`

	Upvotes    int `gorm:"default:0" json:"upvotes"`
	Downvotes  int `gorm:"default:0" json:"downvotes"`
	VoteScore  int `gorm:"default:0" json:"vote_score"`
	ReplyCount int `gorm:"default:0" json:"reply_count"`

	IsDeleted bool       `gorm:"default:false" json:"is_deleted"`
	IsEdited  bool       `gorm:"default:false" json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at"`
	IsHidden  bool       `gorm:"default:false" json:"is_hidden"`

	User    User      `json:"user,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentCommentID" json:"replies,omitempty"`
}

type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

type CommentVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CommentID uint     `gorm:"not null;uniqueIndex:idx_comment_user_vote" json:"comment_id"`
	UserID    uint     `gorm:"not null;uniqueIndex:idx_comment_user_vote" json:"user_id"`
	VoteType  VoteType `gorm:"not null" json:"vote_type"`
}

type ReportReason string

const (
	ReportSpam       ReportReason = "spam"
	ReportHarassment ReportReason = "harassment"
	ReportOffTopic   ReportReason = "off_topic"
	ReportOther      ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportSpam, ReportHarassment, ReportOffTopic, ReportOther:
		return true
	}
	return false
}

type CommentReport struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CommentID    uint         `gorm:"index;not null" json:"comment_id"`
	ReportedByID uint         `gorm:"not null" json:"reported_by_id"`
	Reason       ReportReason `gorm:"not null" json:"reason"`
	Details      string       `json:"details"`
	Resolved     bool         `gorm:"default:false" json:"resolved"`
	ResolvedByID *uint        `json:"resolved_by_id"`
	ResolvedAt   *time.Time   `json:"resolved_at"`
}

// Statistic keys.
const (
	StatTotalMovieMondays      = "totalMovieMondays"
	StatTotalMealsShared       = "totalMealsShared"
	StatTotalCocktailsConsumed = "totalCocktailsConsumed"
)

type Statistic struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Value int64  `gorm:"default:0" json:"value"`
}

// All lists every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&User{},
		&Group{},
		&GroupInvite{},
		&MovieMonday{},
		&MovieSelection{},
		&MovieCast{},
		&MovieCrew{},
		&MovieMondayEventDetails{},
		&WatchlistCategory{},
		&WatchlistItem{},
		&WatchlistLike{},
		&CommentSection{},
		&Comment{},
		&CommentVote{},
		&CommentReport{},
		&Statistic{},
	}
}
