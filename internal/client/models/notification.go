package models

// PushKeys are the encryption keys of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription identifies a push endpoint registered with the server.
type PushSubscription struct {
	Endpoint string   `json:"endpoint"`
	Keys     PushKeys `json:"keys"`
}

// NotificationAction is a button shown on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// NotificationData is the data attached to a displayed notification.
type NotificationData struct {
	URL     string `json:"url"`
	StoryID string `json:"storyId,omitempty"`
}

// Notification is the display payload built from an incoming push message.
type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Image              string               `json:"image,omitempty"`
	Data               NotificationData     `json:"data"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	RequireInteraction bool                 `json:"requireInteraction"`
	Vibrate            []int                `json:"vibrate,omitempty"`
}
