package domain

import "testing"

func TestImageEntry_VisibleTo(t *testing.T) {
	tests := []struct {
		name     string
		entry    ImageEntry
		username string
		want     bool
	}{
		{"anonymous visible to nobody logged in", NewEntry("a.png", Anonymous, true), "", true},
		{"anonymous visible to any user", NewEntry("a.png", Anonymous, true), "alice", true},
		{"anonymous ignores private flag", NewEntry("a.png", Anonymous, false), "bob", true},
		{"public owned visible to stranger", NewEntry("b.png", OwnedBy("alice"), true), "bob", true},
		{"public owned visible when logged out", NewEntry("b.png", OwnedBy("alice"), true), "", true},
		{"private owned visible to owner", NewEntry("b.png", OwnedBy("alice"), false), "alice", true},
		{"private owned hidden from stranger", NewEntry("b.png", OwnedBy("alice"), false), "bob", false},
		{"private owned hidden when logged out", NewEntry("b.png", OwnedBy("alice"), false), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.VisibleTo(tt.username); got != tt.want {
				t.Errorf("VisibleTo(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestImageEntry_RemovableBy(t *testing.T) {
	tests := []struct {
		name     string
		entry    ImageEntry
		username string
		want     bool
	}{
		{"owner may remove", NewEntry("a.png", OwnedBy("alice"), false), "alice", true},
		{"stranger may not remove", NewEntry("a.png", OwnedBy("alice"), true), "bob", false},
		{"logged out may not remove", NewEntry("a.png", OwnedBy("alice"), true), "", false},
		{"anonymous image is permanent", NewEntry("a.png", Anonymous, true), "alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.RemovableBy(tt.username); got != tt.want {
				t.Errorf("RemovableBy(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestUser_Authenticate(t *testing.T) {
	user := NewUser("alice", "s3cret")

	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored in plaintext")
	}
	if !user.Authenticate("s3cret") {
		t.Error("Authenticate() rejected the correct password")
	}
	if user.Authenticate("s3cretx") {
		t.Error("Authenticate() accepted a wrong password")
	}
}
