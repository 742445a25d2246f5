package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  DeviceType
	}{
		{
			name:      "iPad classifies as tablet",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1",
			expected:  DeviceTablet,
		},
		{
			name:      "iPhone classifies as mobile",
			userAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148",
			expected:  DeviceMobile,
		},
		{
			name:      "mobile Android classifies as mobile",
			userAgent: "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0.0.0 Mobile Safari/537.36",
			expected:  DeviceMobile,
		},
		{
			name:      "Android tablet without mobile marker falls through to desktop",
			userAgent: "Mozilla/5.0 (Linux; Android 14; SM-X710) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			expected:  DeviceDesktop,
		},
		{
			name:      "kiosk build classifies as kiosk",
			userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36 StationKiosk/2.1",
			expected:  DeviceKiosk,
		},
		{
			name:      "desktop browser classifies as desktop",
			userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			expected:  DeviceDesktop,
		},
		{
			name:      "match is case-insensitive",
			userAgent: "SOMETHING IPAD SOMETHING",
			expected:  DeviceTablet,
		},
		{
			name:      "iPad wins over mobile markers",
			userAgent: "Mozilla/5.0 (iPad; CPU OS 17_0) Mobile/15E148 kiosk",
			expected:  DeviceTablet,
		},
		{
			name:      "empty user agent classifies as desktop",
			userAgent: "",
			expected:  DeviceDesktop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyDevice(tt.userAgent))
		})
	}
}

func TestDescribeDevice(t *testing.T) {
	t.Run("captures raw user agent and classification", func(t *testing.T) {
		ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
		info := DescribeDevice(ua)
		assert.Equal(t, DeviceMobile, info.Type)
		assert.Equal(t, ua, info.UserAgent)
	})

	t.Run("builds a browser-on-os display name for known agents", func(t *testing.T) {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		info := DescribeDevice(ua)
		assert.Contains(t, info.DisplayName, "Chrome")
		assert.Contains(t, info.DisplayName, " on ")
	})

	t.Run("empty user agent yields empty display name", func(t *testing.T) {
		info := DescribeDevice("")
		assert.Equal(t, DeviceDesktop, info.Type)
		assert.Empty(t, info.DisplayName)
	})
}
