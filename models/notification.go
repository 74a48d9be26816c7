package models

import (
	"time"
)

// Module identifies the business area a notification belongs to. It is a
// closed set: the store validates against it and the client uses it to pick
// the page a notification links to.
type Module string

const (
	ModuleLeaves        Module = "Leaves"
	ModuleExpenseRefund Module = "ExpenseRefunds"
	ModuleFeedbacks     Module = "Feedbacks"
	ModulePresentations Module = "Presentations"
	ModuleCompany       Module = "Company"
	ModuleMyProjects    Module = "MyProjects"
	ModuleMyProfile     Module = "MyProfile"
)

// AllModules lists every valid module tag.
var AllModules = []Module{
	ModuleLeaves,
	ModuleExpenseRefund,
	ModuleFeedbacks,
	ModulePresentations,
	ModuleCompany,
	ModuleMyProjects,
	ModuleMyProfile,
}

// IsValid reports whether m is one of the known module tags.
func (m Module) IsValid() bool {
	for _, known := range AllModules {
		if m == known {
			return true
		}
	}
	return false
}

// ModuleRoutes maps a module tag to the portal page a notification click
// navigates to. Unknown tags fall back to the portal root.
var ModuleRoutes = map[Module]string{
	ModuleLeaves:        "/leaves",
	ModuleExpenseRefund: "/expense-refunds",
	ModuleFeedbacks:     "/feedbacks",
	ModulePresentations: "/presentations",
	ModuleCompany:       "/company",
	ModuleMyProjects:    "/my-projects",
	ModuleMyProfile:     "/my-profile",
}

// RouteForModule returns the portal path for a module tag, or "/" when the
// tag is not recognized.
func RouteForModule(m Module) string {
	if path, ok := ModuleRoutes[m]; ok {
		return path
	}
	return "/"
}

// Notification is a single in-app notification addressed to one recipient.
// The recipient email is the only partition key; it is not a foreign key
// into a user table. ReadAt is nil until the recipient opens it.
type Notification struct {
	ID             string     `json:"id" db:"id"`
	RecipientEmail string     `json:"email" db:"recipient_email"`
	Message        string     `json:"text" db:"message"`
	EntityID       *string    `json:"entity_id,omitempty" db:"entity_id"`
	Module         Module     `json:"module" db:"module"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	ReadAt         *time.Time `json:"read_date" db:"read_at"`
}

// IsRead reports whether the notification has been opened.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationFilter narrows a notification listing by read state.
type NotificationFilter string

const (
	FilterAll    NotificationFilter = "all"
	FilterRead   NotificationFilter = "read"
	FilterUnread NotificationFilter = "unread"
)

// ParseNotificationFilter maps a query-string value to a filter, defaulting
// to "all" for an empty value.
func ParseNotificationFilter(s string) (NotificationFilter, bool) {
	switch NotificationFilter(s) {
	case "":
		return FilterAll, true
	case FilterAll, FilterRead, FilterUnread:
		return NotificationFilter(s), true
	}
	return FilterAll, false
}

// CreateNotificationRequest is the body accepted by both the internal and
// the public create endpoints.
type CreateNotificationRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Text     string  `json:"text" validate:"required"`
	EntityID *string `json:"entity_id,omitempty"`
	Module   string  `json:"module" validate:"required"`
}

// NotificationListResponse wraps a listing result.
type NotificationListResponse struct {
	Notifications []*Notification `json:"notifications"`
}
