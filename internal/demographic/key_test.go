package demographic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Phoenix, AZ", "phoenix, az"},
		{"  PHOENIX ,AZ  ", "phoenix, az"},
		{"San   Luis  Obispo, CA", "san luis obispo, ca"},
		{"Phoenix,,AZ", "phoenix, az"},
		{"ＡＵＳＴＩＮ, TX", "austin, tx"},
		{"", ""},
		{" , ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLocation(tt.in))
		})
	}
}
