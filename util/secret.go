package util

// MaskSecret hides all but the first visiblePrefix bytes of s for display in
// logs and summaries. Strings no longer than the prefix are fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if s == "" {
		return ""
	}
	if visiblePrefix < 0 || len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}
