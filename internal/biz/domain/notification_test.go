package domain

import "testing"

func TestNotificationEvent_DismissActionIndex(t *testing.T) {
	reply := Action{Title: "Reply", Semantic: 1, RemoteInputs: []string{"text"}}
	markRead := Action{Title: "Mark as read", Semantic: SemanticActionDismiss}

	tests := []struct {
		name   string
		event  NotificationEvent
		expect int
	}{
		{
			name:   "no actions",
			event:  NotificationEvent{},
			expect: -1,
		},
		{
			name:   "dismiss action present on both sides",
			event:  NotificationEvent{Actions: []Action{reply, markRead}, NativeActions: []Action{reply, markRead}},
			expect: 1,
		},
		{
			name:   "declared dismiss but platform title differs",
			event:  NotificationEvent{Actions: []Action{markRead}, NativeActions: []Action{{Title: "Read", Semantic: SemanticActionDismiss}}},
			expect: -1,
		},
		{
			name:   "same title without dismiss semantic",
			event:  NotificationEvent{Actions: []Action{markRead}, NativeActions: []Action{{Title: "Mark as read", Semantic: 0}}},
			expect: -1,
		},
		{
			name:   "only non-dismiss actions",
			event:  NotificationEvent{Actions: []Action{reply}, NativeActions: []Action{reply}},
			expect: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.DismissActionIndex(); got != tt.expect {
				t.Errorf("Expected index %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestIsSourcePackage(t *testing.T) {
	if !IsSourcePackage(PackageWhatsApp) || !IsSourcePackage(PackageWhatsAppBusiness) {
		t.Error("Expected both chat app packages to be recognized")
	}
	if IsSourcePackage("org.telegram.messenger") || IsSourcePackage("") {
		t.Error("Expected other packages to be ignored")
	}
}

func TestEventID(t *testing.T) {
	if got := EventID("com.whatsapp", "0|com.whatsapp|1|abc|10123"); got != "com.whatsapp_0|com.whatsapp|1|abc|10123" {
		t.Errorf("unexpected event id %q", got)
	}
}
