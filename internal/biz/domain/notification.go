package domain

import "strings"

// Source packages whose notifications are subject to muting
const (
	PackageWhatsApp         = "com.whatsapp"
	PackageWhatsAppBusiness = "com.whatsapp.w4b"
)

// SemanticActionDismiss is the platform's semantic code for a mark-as-read / dismiss action
const SemanticActionDismiss = 2

// Action is an affordance attached to a notification
type Action struct {
	Title        string
	Semantic     int
	RemoteInputs []string // result keys accepted by the action, empty when it takes no input
}

// IsDismiss reports whether invoking the action removes the notification without opening the app
func (a *Action) IsDismiss() bool {
	return a.Semantic == SemanticActionDismiss
}

// NotificationEvent is one observed posting of a notification
type NotificationEvent struct {
	ID             string // <package>_<platform key>, stable across reposts
	Key            string
	PackageName    string
	Title          string
	Text           string
	IsGroupSummary bool
	Actions        []Action // actions as declared in the observation payload
	NativeActions  []Action // actions the platform reports as invocable right now
	PostedAt       int64    // epoch milliseconds
}

// EventID derives the cache key for a notification
func EventID(packageName, key string) string {
	return packageName + "_" + key
}

// IsSourcePackage checks if the package belongs to a muted chat app
func IsSourcePackage(packageName string) bool {
	return packageName == PackageWhatsApp || packageName == PackageWhatsAppBusiness
}

// HasTitle checks if the notification has a non-blank title
func (e *NotificationEvent) HasTitle() bool {
	return strings.TrimSpace(e.Title) != ""
}

// DismissActionIndex finds the platform action to invoke for suppression.
//
// A declared dismiss action only counts when the platform currently exposes a dismiss action
// with the same title. Returns -1 when no such action exists.
func (e *NotificationEvent) DismissActionIndex() int {
	for _, declared := range e.Actions {
		if !declared.IsDismiss() {
			continue
		}
		for i, native := range e.NativeActions {
			if native.IsDismiss() && native.Title == declared.Title {
				return i
			}
		}
	}
	return -1
}
