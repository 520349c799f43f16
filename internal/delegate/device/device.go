// Package device turns raw User-Agent strings into display names for audit
// metadata, so security review of login events reads "Chrome on Mac OS"
// instead of a 120-character UA string.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent formats a User-Agent as "<browser> on <os>". Unparseable
// parts degrade to "Unknown Browser"/"Unknown OS"; an empty UA becomes
// "Unknown Device".
func ParseUserAgent(uaString string) string {
	if strings.TrimSpace(uaString) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(uaString)
	browser, _ := ua.Browser()
	osInfo := ua.OS()
	if osInfo == "" {
		osInfo = ua.Platform()
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if osInfo == "" {
		osInfo = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + osInfo)
}
