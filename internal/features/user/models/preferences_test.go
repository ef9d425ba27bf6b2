package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences(9)
	assert.Equal(t, "es", p.Language)
	assert.Equal(t, "on", p.Notifications)
	assert.Equal(t, "light", p.Theme)
}

func TestPreferenceNextCycles(t *testing.T) {
	p := DefaultPreferences(1)
	assert.Equal(t, "en", p.Next(PreferenceLanguage))

	p = p.Set(PreferenceLanguage, "en")
	assert.Equal(t, "es", p.Next(PreferenceLanguage))

	p = p.Set(PreferenceTheme, "unknown")
	assert.Equal(t, "light", p.Next(PreferenceTheme))
}

func TestPreferenceValidation(t *testing.T) {
	assert.True(t, IsKnownPreference("theme"))
	assert.False(t, IsKnownPreference("font"))
	assert.True(t, IsAllowedPreferenceValue("notifications", "off"))
	assert.False(t, IsAllowedPreferenceValue("notifications", "maybe"))
}
