package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"versioned", "https://res.cloudinary.com/demo/image/upload/v1712345678/sheesh/avatars/abc-me.webp", "sheesh/avatars/abc-me"},
		{"unversioned", "https://res.cloudinary.com/demo/image/upload/sheesh/avatars/abc.webp", "sheesh/avatars/abc"},
		{"folder starting with v", "https://res.cloudinary.com/demo/image/upload/videos/clip.webp", "videos/clip"},
		{"not cloudinary", "https://example.com/avatar.png", ""},
		{"upload is last", "https://res.cloudinary.com/demo/image/upload", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPublicID(tt.url))
		})
	}
}
