package utils

import "strings"

func BuildJobStatsCacheKey(ownerID string) string {
	return "jobs:stats:v1:owner=" + strings.TrimSpace(ownerID)
}
