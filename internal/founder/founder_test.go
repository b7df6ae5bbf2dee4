package founder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	assert.NoError(t, Record{Name: "Amy Lee"}.Validate())

	err := Record{Name: "   ", Email: "x@y.com"}.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
	assert.Contains(t, err.Error(), "name is required")
}

func TestNewFounder_Projection(t *testing.T) {
	f := NewFounder(Record{
		Name:        "  José Núñez ",
		Email:       "Jose@Example.COM",
		LinkedInURL: "https://www.linkedin.com/in/jnunez/",
		Title:       "CEO",
		Skills:      []string{"Go", "go", " ", "Sales"},
	}, SourceCSVImport)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "José Núñez", f.Name)
	assert.Equal(t, "jose nunez", f.NormalizedName)
	assert.Equal(t, "jose@example.com", f.Email)
	assert.Equal(t, "https://www.linkedin.com/in/jnunez/", f.LinkedInURL)
	assert.Equal(t, []string{"Go", "Sales"}, f.Skills)
	assert.Equal(t, SourceCSVImport, f.Source)
	assert.Equal(t, DefaultStage, f.Stage)
}

func TestNewFounder_DefaultsToManual(t *testing.T) {
	f := NewFounder(Record{Name: "Bob Chen"}, "")
	assert.Equal(t, SourceManual, f.Source)
}

func TestFounder_MergeKeepsNameAndFillsFields(t *testing.T) {
	f := NewFounder(Record{Name: "Amy Lee", Email: "amy@x.com", Title: "CTO", Skills: []string{"ML"}}, SourceManual)
	f.Stage = "contacted"

	f.Merge(Record{
		Name:     "A. Lee",
		Title:    "",
		Location: "Berlin",
		Skills:   []string{"ml", "Infra"},
	})

	assert.Equal(t, "Amy Lee", f.Name)
	assert.Equal(t, "amy lee", f.NormalizedName)
	assert.Equal(t, "amy@x.com", f.Email)
	assert.Equal(t, "CTO", f.Title)
	assert.Equal(t, "Berlin", f.Location)
	assert.Equal(t, []string{"ML", "Infra"}, f.Skills)
	assert.Equal(t, "contacted", f.Stage)
	assert.Equal(t, SourceManual, f.Source)
}

func TestFounder_MergeOverwritesEmail(t *testing.T) {
	f := NewFounder(Record{Name: "Amy Lee", Email: "amy@x.com"}, SourceManual)
	f.Merge(Record{Name: "Amy Lee", Email: " AMY@NEW.io "})
	assert.Equal(t, "amy@new.io", f.Email)
}
