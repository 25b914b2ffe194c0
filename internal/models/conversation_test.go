package models

import (
	"testing"
	"time"
)

func TestConversationIDOrderIndependent(t *testing.T) {
	a := ConversationID("alice123", "bob45678")
	b := ConversationID("bob45678", "alice123")
	if a != b {
		t.Errorf("ConversationID not canonical: %q vs %q", a, b)
	}
	if a != "alice123_bob45678" {
		t.Errorf("ConversationID = %q, want alice123_bob45678", a)
	}
}

func TestUnreadScenario(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := NewConversation("alice123", "bob45678", now)

	conv.ApplyMessage("alice123", "bob45678", "hi", now)
	if conv.UnreadCounts["bob45678"] != 1 {
		t.Fatalf("unread = %d, want 1", conv.UnreadCounts["bob45678"])
	}

	if cleared := conv.MarkRead("bob45678"); !cleared {
		t.Fatal("MarkRead should report something was cleared")
	}
	if conv.UnreadCounts["bob45678"] != 0 {
		t.Fatalf("unread after read = %d, want 0", conv.UnreadCounts["bob45678"])
	}
	if cleared := conv.MarkRead("bob45678"); cleared {
		t.Error("MarkRead on a read session should be a no-op")
	}

	conv.ApplyMessage("alice123", "bob45678", "there", now.Add(time.Minute))
	if conv.UnreadCounts["bob45678"] != 1 {
		t.Errorf("unread = %d, want 1", conv.UnreadCounts["bob45678"])
	}
	if conv.LastMessage != "there" || conv.LastSender != "alice123" {
		t.Errorf("last message %q from %q, want \"there\" from alice123", conv.LastMessage, conv.LastSender)
	}
}

func TestNewTrafficRevivesHiddenSession(t *testing.T) {
	now := time.Now()
	conv := NewConversation("alice123", "bob45678", now)

	if hid := conv.Hide("alice123"); !hid {
		t.Fatal("first hide should succeed")
	}
	if hid := conv.Hide("alice123"); hid {
		t.Error("second hide should be a no-op")
	}
	conv.Hide("bob45678")

	conv.ApplyMessage("alice123", "bob45678", "you there?", now.Add(time.Second))
	if conv.HiddenBy("alice123") || conv.HiddenBy("bob45678") {
		t.Error("new traffic should clear the hide markers for both sides")
	}
}

func TestCounterpart(t *testing.T) {
	conv := NewConversation("alice123", "bob45678", time.Now())
	if got := conv.Counterpart("alice123"); got != "bob45678" {
		t.Errorf("Counterpart(alice123) = %q, want bob45678", got)
	}
	if got := conv.Counterpart("bob45678"); got != "alice123" {
		t.Errorf("Counterpart(bob45678) = %q, want alice123", got)
	}
}
