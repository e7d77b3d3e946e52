package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dy-sh/asana-tracker/internal/model"
)

func TestStatusLabelForColor(t *testing.T) {
	cases := []struct {
		color string
		want  string
	}{
		{"green", model.StatusOnTrack},
		{"blue", model.StatusOnHold},
		{"yellow", model.StatusAtRisk},
		{"red", model.StatusOffTrack},
		{"complete", model.StatusCompleted},
		{"", model.StatusNoStatus},
		{"purple", model.StatusNoStatus},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, model.StatusLabelForColor(tc.color),
			"color %q", tc.color)
	}
}

func TestStatusLabelForFlags(t *testing.T) {
	assert.Equal(t, model.StatusCompleted, model.StatusLabelForFlags(true, false))
	assert.Equal(t, model.StatusCompleted, model.StatusLabelForFlags(true, true))
	assert.Equal(t, model.StatusArchived, model.StatusLabelForFlags(false, true))
	assert.Equal(t, model.StatusActive, model.StatusLabelForFlags(false, false))
}
