package model

import "testing"

func TestPreferenceMapEnabled(t *testing.T) {
	var nilMap PreferenceMap
	if !nilMap.Enabled(NotificationConnectionMessage) {
		t.Fatal("nil map must default to enabled")
	}
	m := PreferenceMap{
		NotificationConnectionMessage: false,
		NotificationPurchaseShipped:   true,
	}
	if m.Enabled(NotificationConnectionMessage) {
		t.Fatal("explicit false must disable")
	}
	if !m.Enabled(NotificationPurchaseShipped) {
		t.Fatal("explicit true must enable")
	}
	if !m.Enabled(NotificationListingAlert) {
		t.Fatal("absent type must default to enabled")
	}
}
