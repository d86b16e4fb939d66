package models

import "testing"

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if PairKey("user-a", "user-b") != PairKey("user-b", "user-a") {
		t.Error("pair key must not depend on argument order")
	}
	if got := PairKey("user-b", "user-a"); got != "user-a#user-b" {
		t.Errorf("unexpected pair key %q", got)
	}
}

func TestConnectionOtherUser(t *testing.T) {
	connection := Connection{User1ID: "user-1", User2ID: "user-2"}

	if got := connection.OtherUser("user-1"); got != "user-2" {
		t.Errorf("expected user-2, got %q", got)
	}
	if got := connection.OtherUser("user-2"); got != "user-1" {
		t.Errorf("expected user-1, got %q", got)
	}
}
