package entities

// NotificationKind classifies the message shown to the user.
type NotificationKind string

const (
	NotificationUpdated NotificationKind = "updated"
	NotificationCreated NotificationKind = "created"
	NotificationInfo    NotificationKind = "info"
	NotificationFailed  NotificationKind = "failed"
)

// Notification is the single dialog message an interaction produces.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// InteractionResult is the settled outcome of one page interaction.
type InteractionResult struct {
	Notification *Notification `json:"notification,omitempty"`

	// Image upload
	Image     *HostedImage `json:"image,omitempty"`
	ImageHTML string       `json:"image_html,omitempty"`

	// Suggestions
	HeadingVisible bool         `json:"heading_visible,omitempty"`
	Suggestions    []Suggestion `json:"suggestions,omitempty"`
	ItemsHTML      string       `json:"items_html,omitempty"`
}
