package video

import (
	"strconv"
	"strings"
)

// aspectDimensions maps a ratio string to output pixel dimensions.
func aspectDimensions(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 1920, 1080
	case "4:3":
		return 1440, 1080
	case "3:4":
		return 1080, 1440
	case "1:1":
		return 1080, 1080
	case "9:16", "":
		return 1080, 1920
	default:
		parts := strings.Split(aspect, ":")
		if len(parts) == 2 {
			if a, errA := strconv.Atoi(strings.TrimSpace(parts[0])); errA == nil {
				if b, errB := strconv.Atoi(strings.TrimSpace(parts[1])); errB == nil && a > 0 && b > 0 {
					width := 1080
					return width, width * b / a
				}
			}
		}
		return 1080, 1920
	}
}

// normalizeAspect returns a ratio string the generative providers accept,
// collapsing unknown input onto the portrait default.
func normalizeAspect(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "16:9", "9:16", "1:1", "4:3", "3:4":
		return aspect
	default:
		return "9:16"
	}
}
