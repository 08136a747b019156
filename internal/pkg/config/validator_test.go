package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("@daily"))
	assert.Error(t, ValidateCronSchedule(""))
	assert.Error(t, ValidateCronSchedule("0 3 * *"))
	assert.Error(t, ValidateCronSchedule("61 * * * *"))
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("America/New_York"))
	assert.Error(t, ValidateTimezone(""))
	assert.Error(t, ValidateTimezone("Mars/Olympus_Mons"))
}

func TestValidateRanges(t *testing.T) {
	assert.NoError(t, ValidateDuration(time.Minute, time.Second, time.Hour))
	assert.Error(t, ValidateDuration(2*time.Hour, time.Second, time.Hour))
	assert.NoError(t, ValidateIntRange(10, 1, 10))
	assert.Error(t, ValidateIntRange(0, 1, 10))
	assert.Error(t, ValidateInt64Range(1<<31, 0, 1<<30))
	assert.Error(t, ValidatePositiveDuration(0))
}

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "https://www.treasury.gov/ofac/downloads/sdn.xml"},
		{raw: "http://localhost:8080/consolidated.xml"},
		{raw: "ftp://example.com/sdn.xml", wantErr: true},
		{raw: "/sdn.xml", wantErr: true},
		{raw: "https://", wantErr: true},
		{raw: "://bad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := ValidateHTTPURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOneOf(t *testing.T) {
	v := OneOf("text", "json")
	assert.NoError(t, v("json"))
	assert.Error(t, v("xml"))
}
