package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCallbackURL(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"https://toko.example.id/hooks", true},
		{"https://toko.example.id:8443/hooks/push", true},
		{"http://toko.example.id/hooks", false},
		{"ftp://toko.example.id", false},
		{"toko.example.id/hooks", false},
		{"https://", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, validCallbackURL(tc.url), tc.url)
	}
}
