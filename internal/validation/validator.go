package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/bhajan-portal/internal/models"
)

// Minimum lengths, counted in characters
const (
	MinTitleLength  = 3
	MinLyricsLength = 20
)

// Validation messages returned to clients
const (
	MsgTitleTooShort  = "Title must be at least 3 characters"
	MsgLyricsTooShort = "Lyrics must be at least 20 characters"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// Validator turns raw form input into storable values
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidTitle reports whether a title meets the minimum length
func ValidTitle(title string) bool {
	return utf8.RuneCountInString(title) >= MinTitleLength
}

// ValidLyrics reports whether lyrics meet the minimum length.
// The check applies to lyrics as submitted, before normalization.
func ValidLyrics(lyrics string) bool {
	return utf8.RuneCountInString(lyrics) >= MinLyricsLength
}

// ValidateCreate checks a create request and builds the bhajan to store.
// Errors are returned in field order: title, then lyrics.
func (v *Validator) ValidateCreate(in *models.CreateBhajanInput) (*models.Bhajan, []ValidationError) {
	var errors []ValidationError

	if !ValidTitle(in.Title) {
		errors = append(errors, ValidationError{Field: "title", Message: MsgTitleTooShort})
	}
	if !ValidLyrics(in.Lyrics) {
		errors = append(errors, ValidationError{Field: "lyrics", Message: MsgLyricsTooShort})
	}
	if len(errors) > 0 {
		return nil, errors
	}

	uploader := models.DefaultUploaderName
	if in.UploaderName != nil && strings.TrimSpace(*in.UploaderName) != "" {
		uploader = *in.UploaderName
	}

	b := &models.Bhajan{
		Title:        in.Title,
		Lyrics:       models.NormalizeLyrics(in.Lyrics),
		UploaderName: uploader,
	}
	b.SetTags(models.ParseTags(in.Tags))
	if in.YoutubeURL != nil {
		b.YoutubeURL = models.NormalizeYoutubeURL(*in.YoutubeURL)
	}

	return b, nil
}

// ValidateUpdate builds a partial update from supplied fields. A supplied
// title or lyrics that is too short is dropped rather than rejected.
func (v *Validator) ValidateUpdate(in *models.UpdateBhajanInput) (*models.BhajanUpdate, []ValidationError) {
	update := &models.BhajanUpdate{}
	var skipped []ValidationError

	if in.Title != nil {
		if ValidTitle(*in.Title) {
			title := *in.Title
			update.Title = &title
		} else {
			skipped = append(skipped, ValidationError{Field: "title", Message: MsgTitleTooShort})
		}
	}

	if in.Lyrics != nil {
		if ValidLyrics(*in.Lyrics) {
			lyrics := models.NormalizeLyrics(*in.Lyrics)
			update.Lyrics = &lyrics
		} else {
			skipped = append(skipped, ValidationError{Field: "lyrics", Message: MsgLyricsTooShort})
		}
	}

	if in.Tags != nil {
		update.SetTags = true
		update.Tags = models.ParseTags(*in.Tags)
	}

	if in.UploaderName != nil && strings.TrimSpace(*in.UploaderName) != "" {
		uploader := *in.UploaderName
		update.UploaderName = &uploader
	}

	if in.YoutubeURL != nil {
		update.SetYoutube = true
		update.YoutubeURL = models.NormalizeYoutubeURL(*in.YoutubeURL)
	}

	return update, skipped
}
