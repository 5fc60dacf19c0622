package passhash

import (
	"strings"
	"testing"
)

func TestNewSalt(t *testing.T) {
	a := NewSalt()
	b := NewSalt()

	if len(a) != SaltLength {
		t.Errorf("len(NewSalt()) = %d, want %d", len(a), SaltLength)
	}
	if string(a) == string(b) {
		t.Error("two salts are identical; salt generation is not random")
	}
}

func TestHash(t *testing.T) {
	salt := []byte("0123456789abcdef")

	digest := Hash("hunter2", salt)

	// SHA-512 renders to 128 hex characters.
	if len(digest) != 128 {
		t.Errorf("len(digest) = %d, want 128", len(digest))
	}
	if digest != strings.ToLower(digest) {
		t.Errorf("digest is not lowercase: %q", digest)
	}
	if strings.Trim(digest, "0123456789abcdef") != "" {
		t.Errorf("digest contains non-hex characters: %q", digest)
	}

	if again := Hash("hunter2", salt); again != digest {
		t.Errorf("Hash is not deterministic: %q vs %q", digest, again)
	}

	if other := Hash("hunter2", []byte("fedcba9876543210")); other == digest {
		t.Error("different salts produced the same digest")
	}
	if other := Hash("hunter3", salt); other == digest {
		t.Error("different passwords produced the same digest")
	}
}

func TestVerify(t *testing.T) {
	salt := NewSalt()
	digest := Hash("correct horse", salt)

	tampered := "0" + digest[1:]
	if tampered == digest {
		tampered = "1" + digest[1:]
	}

	tests := []struct {
		name     string
		password string
		expected string
		want     bool
	}{
		{"correct password", "correct horse", digest, true},
		{"wrong password", "correct horsex", digest, false},
		{"empty password", "", digest, false},
		{"tampered digest", "correct horse", tampered, false},
		{"empty digest", "correct horse", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.password, salt, tt.expected); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}
