package validation

import (
	"strings"
	"testing"

	"github.com/bhajan-portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

const validLyrics = "Om Namah Shivaya, Om Namah Shivaya"

func TestValidateCreate(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		input      *models.CreateBhajanInput
		wantErrors int
		wantFields []string
		wantMsg    string
	}{
		{
			name:  "valid bhajan",
			input: &models.CreateBhajanInput{Title: "Shiva", Lyrics: validLyrics, Tags: "shiva, morning"},
		},
		{
			name:       "title too short",
			input:      &models.CreateBhajanInput{Title: "Hi", Lyrics: validLyrics},
			wantErrors: 1,
			wantFields: []string{"title"},
			wantMsg:    "Title must be at least 3 characters",
		},
		{
			name:       "missing title",
			input:      &models.CreateBhajanInput{Lyrics: validLyrics},
			wantErrors: 1,
			wantFields: []string{"title"},
			wantMsg:    "Title must be at least 3 characters",
		},
		{
			name:       "lyrics too short",
			input:      &models.CreateBhajanInput{Title: "Shiva", Lyrics: "too short"},
			wantErrors: 1,
			wantFields: []string{"lyrics"},
			wantMsg:    "Lyrics must be at least 20 characters",
		},
		{
			name:       "both invalid reports title first",
			input:      &models.CreateBhajanInput{Title: "", Lyrics: ""},
			wantErrors: 2,
			wantFields: []string{"title", "lyrics"},
			wantMsg:    "Title must be at least 3 characters",
		},
		{
			name:  "three multibyte characters is a valid title",
			input: &models.CreateBhajanInput{Title: "ಓಂಕ", Lyrics: validLyrics},
		},
		{
			name:  "exactly twenty characters of lyrics",
			input: &models.CreateBhajanInput{Title: "Edge", Lyrics: strings.Repeat("a", 20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, errs := validator.ValidateCreate(tt.input)
			require.Len(t, errs, tt.wantErrors)
			if tt.wantErrors == 0 {
				require.NotNil(t, b)
				return
			}
			assert.Nil(t, b)
			for i, field := range tt.wantFields {
				assert.Equal(t, field, errs[i].Field)
			}
			assert.Equal(t, tt.wantMsg, errs[0].Error())
		})
	}
}

func TestValidateCreate_BuildsBhajan(t *testing.T) {
	b, errs := NewValidator().ValidateCreate(&models.CreateBhajanInput{
		Title:      "Morning Prayer",
		Lyrics:     "   Line one of the prayer\n\t line two of the prayer",
		Tags:       " bhakti , , morning ",
		YoutubeURL: strPtr("  https://youtu.be/abc  "),
	})
	require.Empty(t, errs)

	assert.Equal(t, "Line one of the prayer\nline two of the prayer", b.Lyrics)
	assert.Equal(t, []string{"bhakti", "morning"}, b.GetTags())
	assert.Equal(t, models.DefaultUploaderName, b.UploaderName)
	require.NotNil(t, b.YoutubeURL)
	assert.Equal(t, "https://youtu.be/abc", *b.YoutubeURL)
}

func TestValidateCreate_UploaderAndBlankURL(t *testing.T) {
	b, errs := NewValidator().ValidateCreate(&models.CreateBhajanInput{
		Title:        "Evening",
		Lyrics:       validLyrics,
		UploaderName: strPtr("Ramesh"),
		YoutubeURL:   strPtr("   "),
	})
	require.Empty(t, errs)
	assert.Equal(t, "Ramesh", b.UploaderName)
	assert.Nil(t, b.YoutubeURL)

	b, _ = NewValidator().ValidateCreate(&models.CreateBhajanInput{
		Title:        "Evening",
		Lyrics:       validLyrics,
		UploaderName: strPtr("  "),
	})
	assert.Equal(t, models.DefaultUploaderName, b.UploaderName)
}

func TestValidateUpdate(t *testing.T) {
	validator := NewValidator()

	t.Run("nothing supplied", func(t *testing.T) {
		update, skipped := validator.ValidateUpdate(&models.UpdateBhajanInput{})
		assert.Empty(t, skipped)
		assert.True(t, update.Empty())
	})

	t.Run("short fields are skipped", func(t *testing.T) {
		update, skipped := validator.ValidateUpdate(&models.UpdateBhajanInput{
			Title:  strPtr("Hi"),
			Lyrics: strPtr("short"),
		})
		assert.Len(t, skipped, 2)
		assert.Nil(t, update.Title)
		assert.Nil(t, update.Lyrics)
		assert.True(t, update.Empty())
	})

	t.Run("empty tags string clears tags", func(t *testing.T) {
		update, _ := validator.ValidateUpdate(&models.UpdateBhajanInput{Tags: strPtr("")})
		assert.True(t, update.SetTags)
		assert.Equal(t, []string{}, update.Tags)
	})

	t.Run("valid fields are applied", func(t *testing.T) {
		update, skipped := validator.ValidateUpdate(&models.UpdateBhajanInput{
			Title:        strPtr("New title"),
			Lyrics:       strPtr("  indented lyrics line one\n  and line two"),
			Tags:         strPtr("a,b"),
			UploaderName: strPtr("Lakshmi"),
			YoutubeURL:   strPtr(""),
		})
		assert.Empty(t, skipped)
		assert.Equal(t, "New title", *update.Title)
		assert.Equal(t, "indented lyrics line one\nand line two", *update.Lyrics)
		assert.Equal(t, []string{"a", "b"}, update.Tags)
		assert.Equal(t, "Lakshmi", *update.UploaderName)
		assert.True(t, update.SetYoutube)
		assert.Nil(t, update.YoutubeURL)
	})
}
