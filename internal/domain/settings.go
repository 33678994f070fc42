package domain

// UserSettings are user-facing preferences persisted as a single JSON blob
type UserSettings struct {
	Theme         string               `json:"theme"`
	Language      string               `json:"language"`
	Notifications NotificationSettings `json:"notifications"`
}

// NotificationSettings holds the notification toggles
type NotificationSettings struct {
	Email                 bool `json:"email"`
	Push                  bool `json:"push"`
	SignalAlerts          bool `json:"signal_alerts"`
	SubscriptionReminders bool `json:"subscription_reminders"`
}

// DefaultUserSettings returns the settings used when a user has none stored
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:    "system",
		Language: "en",
		Notifications: NotificationSettings{
			Email:                 true,
			Push:                  false,
			SignalAlerts:          true,
			SubscriptionReminders: true,
		},
	}
}
