package audit

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ClassifyDevice derives the coarse device type from a raw user-agent
// string via ordered, case-insensitive keyword match:
//
//  1. "ipad"                      -> tablet
//  2. "iphone" or mobile Android  -> mobile
//  3. "kiosk"                     -> kiosk
//  4. anything else               -> desktop
//
// The order matters: iPad user agents also contain "Mobile", and kiosk
// builds often embed a desktop browser string.
func ClassifyDevice(rawUA string) DeviceType {
	ua := strings.ToLower(rawUA)
	switch {
	case strings.Contains(ua, "ipad"):
		return DeviceTablet
	case strings.Contains(ua, "iphone"),
		strings.Contains(ua, "android") && strings.Contains(ua, "mobile"):
		return DeviceMobile
	case strings.Contains(ua, "kiosk"):
		return DeviceKiosk
	default:
		return DeviceDesktop
	}
}

// DescribeDevice builds the DeviceInfo stored on an entry: the coarse
// classification plus a best-effort "Browser on OS" display name for the
// station logbook.
func DescribeDevice(rawUA string) DeviceInfo {
	info := DeviceInfo{
		Type:      ClassifyDevice(rawUA),
		UserAgent: rawUA,
	}
	if rawUA == "" {
		return info
	}
	parsed := useragent.New(rawUA)
	name, _ := parsed.Browser()
	os := parsed.OS()
	switch {
	case name != "" && os != "":
		info.DisplayName = fmt.Sprintf("%s on %s", name, os)
	case name != "":
		info.DisplayName = name
	case os != "":
		info.DisplayName = os
	}
	return info
}
