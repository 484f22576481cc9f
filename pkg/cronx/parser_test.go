package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 */10 * * * *", false},
		{"@hourly", false},
		{"@every 30m", false},
		{"*/10 * * * *", true},
		{"invalid", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStandardParser_Seconds(t *testing.T) {
	schedule, err := StandardParser().Parse("30 0 * * * *")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 30, 0, time.UTC), schedule.Next(base))
}
