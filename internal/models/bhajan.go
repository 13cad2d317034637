package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

// Defaults applied to uploader names
const (
	DefaultUploaderName = "Anonymous"
	LegacyUploaderName  = "Unknown"
)

// Bhajan represents a devotional song entry
type Bhajan struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Lyrics       string     `json:"lyrics" db:"lyrics"`
	TagsJSON     string     `json:"-" db:"tags"` // JSON array as stored
	UploaderName string     `json:"uploader_name" db:"uploader_name"`
	YoutubeURL   *string    `json:"youtube_url" db:"youtube_url"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// BhajanResponse is the API projection of a Bhajan
type BhajanResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Lyrics       string    `json:"lyrics"`
	Tags         []string  `json:"tags"`
	UploaderName string    `json:"uploader_name"`
	YoutubeURL   *string   `json:"youtube_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetTags decodes the stored tag list. Malformed or empty content yields an empty list.
func (b *Bhajan) GetTags() []string {
	return DecodeTags(b.TagsJSON)
}

// SetTags encodes the tag list for storage
func (b *Bhajan) SetTags(tags []string) {
	b.TagsJSON = EncodeTags(tags)
}

// IsDeleted reports whether the bhajan has been soft-deleted
func (b *Bhajan) IsDeleted() bool {
	return b.DeletedAt != nil
}

// ToResponse projects the bhajan into its API shape
func (b *Bhajan) ToResponse() BhajanResponse {
	return BhajanResponse{
		ID:           b.ID,
		Title:        b.Title,
		Lyrics:       b.Lyrics,
		Tags:         b.GetTags(),
		UploaderName: b.UploaderName,
		YoutubeURL:   b.YoutubeURL,
		CreatedAt:    b.CreatedAt.UTC(),
		UpdatedAt:    b.UpdatedAt.UTC(),
	}
}

// EncodeTags serializes tags as a JSON array; nil encodes as []
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeTags parses a JSON array of strings
func DecodeTags(raw string) []string {
	tags := []string{}
	if strings.TrimSpace(raw) == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// ParseTags splits a comma-separated tag string, trimming each entry and dropping empties
func ParseTags(input string) []string {
	tags := []string{}
	for _, part := range strings.Split(input, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeLyrics strips leading whitespace from every line
func NormalizeLyrics(lyrics string) string {
	lines := strings.Split(lyrics, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeftFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}

// NormalizeYoutubeURL trims the URL; blank input becomes nil
func NormalizeYoutubeURL(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListFilter narrows a bhajan listing
type ListFilter struct {
	Search string
	Tag    string
}

// CreateBhajanInput carries create form values as received
type CreateBhajanInput struct {
	Title        string
	Lyrics       string
	Tags         string
	UploaderName *string
	YoutubeURL   *string
}

// UpdateBhajanInput carries update form values; nil means not supplied
type UpdateBhajanInput struct {
	Title        *string
	Lyrics       *string
	Tags         *string
	UploaderName *string
	YoutubeURL   *string
}

// BhajanUpdate is a validated partial update. Nil fields are left untouched.
type BhajanUpdate struct {
	Title        *string
	Lyrics       *string
	Tags         []string
	SetTags      bool
	UploaderName *string
	YoutubeURL   *string
	SetYoutube   bool
}

// Empty reports whether the update changes no fields
func (u *BhajanUpdate) Empty() bool {
	return u.Title == nil && u.Lyrics == nil && !u.SetTags && u.UploaderName == nil && !u.SetYoutube
}

// Stats is the portal statistics payload
type Stats struct {
	TotalBhajans int       `json:"total_bhajans"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// DeleteResult confirms a soft delete
type DeleteResult struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}
