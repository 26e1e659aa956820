package models

// MPreferences are the persisted user display preferences.
type MPreferences struct {
	Theme    string `json:"theme"`
	FontSize int    `json:"fontSize"`
	Language string `json:"language"`
}

// DefaultPreferences mirrors the first-run defaults of the dashboard.
func DefaultPreferences() MPreferences {
	return MPreferences{Theme: "light", FontSize: 16, Language: "fr"}
}
