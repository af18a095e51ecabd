package cachekey

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var keyPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

func TestDerive_KnownValues(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	assert.Equal(t, "5d41402abc4b", Derive("hello"))
	// md5("") = d41d8cd98f00b204e9800998ecf8427e
	assert.Equal(t, "d41d8cd98f00", Derive(""))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "5d41402abc4b.mp3", Filename("hello", "mp3"))
	assert.Equal(t, "5d41402abc4b.wav", Filename("hello", "wav"))
}

func TestDerive_NoCollisionsInCorpus(t *testing.T) {
	corpus := []string{
		"I'm going to eat.",
		"I want to sleep.",
		"Can I sit here?",
		"Do you want to go out tonight?",
		"I'm going to eat",
		"i'm going to eat.",
		"I'm going to eat. ",
		"저는 먹을 거예요.",
	}

	seen := make(map[string]string, len(corpus))
	for _, text := range corpus {
		key := Derive(text)
		if other, ok := seen[key]; ok {
			t.Fatalf("коллизия ключа %s: %q и %q", key, other, text)
		}
		seen[key] = text
	}
}

func TestDerive_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")

		key := Derive(text)
		if !keyPattern.MatchString(key) {
			t.Fatalf("ключ %q не соответствует формату", key)
		}
		if again := Derive(text); again != key {
			t.Fatalf("ключ не детерминирован: %q != %q", key, again)
		}
	})
}

func TestDerive_DistinctTexts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.StringN(1, 64, -1).Draw(t, "a")
		b := rapid.StringN(1, 64, -1).Draw(t, "b")
		if a == b {
			t.Skip("одинаковые строки")
		}
		if Derive(a) == Derive(b) {
			t.Fatalf("коллизия для %q и %q", a, b)
		}
	})
}
