package models

import "time"

const (
	PreferenceLanguage      = "language"
	PreferenceNotifications = "notifications"
	PreferenceTheme         = "theme"
)

// Allowed values per preference; the first entry is the default.
var PreferenceValues = map[string][]string{
	PreferenceLanguage:      {"es", "en"},
	PreferenceNotifications: {"on", "off"},
	PreferenceTheme:         {"light", "dark"},
}

type Preferences struct {
	UserID        int64     `db:"user_id" json:"user_id"`
	Language      string    `db:"language" json:"language"`
	Notifications string    `db:"notifications" json:"notifications"`
	Theme         string    `db:"theme" json:"theme"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func DefaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:        userID,
		Language:      PreferenceValues[PreferenceLanguage][0],
		Notifications: PreferenceValues[PreferenceNotifications][0],
		Theme:         PreferenceValues[PreferenceTheme][0],
	}
}

func IsKnownPreference(name string) bool {
	_, ok := PreferenceValues[name]
	return ok
}

func IsAllowedPreferenceValue(name, value string) bool {
	for _, v := range PreferenceValues[name] {
		if v == value {
			return true
		}
	}
	return false
}

// Get returns the value of a named preference.
func (p Preferences) Get(name string) string {
	switch name {
	case PreferenceLanguage:
		return p.Language
	case PreferenceNotifications:
		return p.Notifications
	case PreferenceTheme:
		return p.Theme
	}
	return ""
}

// Set returns a copy with the named preference replaced.
func (p Preferences) Set(name, value string) Preferences {
	switch name {
	case PreferenceLanguage:
		p.Language = value
	case PreferenceNotifications:
		p.Notifications = value
	case PreferenceTheme:
		p.Theme = value
	}
	return p
}

// Next cycles to the following allowed value of a preference.
func (p Preferences) Next(name string) string {
	values := PreferenceValues[name]
	current := p.Get(name)
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	if len(values) > 0 {
		return values[0]
	}
	return current
}
