package domain

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformTikTok    Platform = "TIKTOK"
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTwitter   Platform = "TWITTER"
)

// Platforms lists every supported platform in sweep order.
var Platforms = []Platform{PlatformTikTok, PlatformYouTube, PlatformInstagram, PlatformTwitter}

func (p Platform) Valid() bool {
	switch p {
	case PlatformTikTok, PlatformYouTube, PlatformInstagram, PlatformTwitter:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// ParsePlatform accepts enum values and common spellings ("x", "tiktok").
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TIKTOK":
		return PlatformTikTok, nil
	case "YOUTUBE":
		return PlatformYouTube, nil
	case "INSTAGRAM":
		return PlatformInstagram, nil
	case "TWITTER", "X":
		return PlatformTwitter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}
