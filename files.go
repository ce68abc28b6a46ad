/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
)

const sizePrefixes = "kMGTPE"

// humanReadableSize formats a byte count with SI prefixes, as used in the
// SERVE: log lines.
func humanReadableSize(bytes int64) string {
	const unit = 1000

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	size := float64(bytes) / unit
	prefix := 0

	for size >= unit && prefix < len(sizePrefixes)-1 {
		size /= unit
		prefix++
	}

	return fmt.Sprintf("%.1f %cB", size, sizePrefixes[prefix])
}
