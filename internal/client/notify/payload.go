// Package notify connects push notifications to the story API.
//
// The Gateway registers and removes the client's push endpoint on the server
// and turns incoming push payloads into displayable notifications. A payload
// that cannot be decoded never stops delivery: the generic default
// notification is shown instead.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storysync/internal/client/models"
)

var ErrDecode = errors.New("malformed notification payload")

const (
	DefaultTitle = "Story App"
	DefaultBody  = "A new story has been shared!"
	DefaultIcon  = "/favicon.png"
	DefaultURL   = "/"

	ActionOpen  = "open"
	ActionClose = "close"
)

var defaultVibrate = []int{200, 100, 200}

// payload mirrors what the server pushes:
//
//	{"title": "...", "options": {"body": "...", "icon": "...", "image": "...", "url": "...", "storyId": "..."}}
type payload struct {
	Title   string `json:"title"`
	Options struct {
		Body    string `json:"body"`
		Icon    string `json:"icon"`
		Badge   string `json:"badge"`
		Image   string `json:"image"`
		URL     string `json:"url"`
		StoryID string `json:"storyId"`
	} `json:"options"`
}

// DefaultNotification is shown for empty or undecodable payloads.
func DefaultNotification() models.Notification {
	return models.Notification{
		Title: DefaultTitle,
		Body:  DefaultBody,
		Icon:  DefaultIcon,
		Badge: DefaultIcon,
		Data:  models.NotificationData{URL: DefaultURL},
		Actions: []models.NotificationAction{
			{Action: ActionOpen, Title: "View story", Icon: DefaultIcon},
			{Action: ActionClose, Title: "Close"},
		},
		Vibrate: append([]int(nil), defaultVibrate...),
	}
}

// Decode builds a notification from a push payload, filling missing fields
// with defaults. On a malformed payload it returns the default notification
// together with an error wrapping ErrDecode.
func Decode(data []byte) (models.Notification, error) {
	n := DefaultNotification()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return n, nil
	}

	var p *payload
	if err := json.Unmarshal(data, &p); err != nil {
		return n, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if p == nil {
		return n, nil
	}

	if p.Title != "" {
		n.Title = p.Title
	}
	o := p.Options
	if o.Body != "" {
		n.Body = o.Body
	}
	if o.Icon != "" {
		n.Icon = o.Icon
	}
	if o.Badge != "" {
		n.Badge = o.Badge
	}
	n.Image = o.Image
	if o.URL != "" {
		n.Data.URL = o.URL
	}
	n.Data.StoryID = o.StoryID

	return n, nil
}

// ResolveClick maps a click on n (the body or one of its actions) to the
// URL to open. open is false for the close action.
func ResolveClick(n models.Notification, action string) (url string, open bool) {
	if action == ActionClose {
		return "", false
	}
	if n.Data.URL == "" {
		return DefaultURL, true
	}
	return n.Data.URL, true
}
