package typedprefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"number_of_rows", "NumberOfRows"},
		{"server-url", "ServerUrl"},
		{"ui.primary_color", "UiPrimaryColor"},
		{"SHOW_IMAGES", "ShowImages"},
		{"useInputs", "UseInputs"},
		{"RequestAgent", "RequestAgent"},
		{"  padded  ", "Padded"},
		{"2fa_enabled", "P2faEnabled"},
		{"", ""},
		{"___", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, AccessorName(tt.key))
		})
	}
}
