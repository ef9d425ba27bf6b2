package models

// PreferenceUpdate is the body of POST /debug/users/{id}/preferences.
type PreferenceUpdate struct {
	PreferenceName  string `json:"preference_name" binding:"required" example:"language" enums:"language,notifications,theme"`
	PreferenceValue string `json:"preference_value" binding:"required" example:"en"`
}

type UsersResponse struct {
	Items []*User `json:"items"`
	Total int     `json:"total" example:"42"`
}
