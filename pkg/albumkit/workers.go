package albumkit

import (
	"os"
	"runtime"
	"strconv"

	"k8s.io/klog/v2"
)

// WorkersEnv overrides the computed worker count when set to a positive integer.
const WorkersEnv = "THUMBNAIL_WORKERS"

// workerCount returns multiplier workers per available CPU, capped at limit
// (0 for no cap). GOMAXPROCS reflects container CPU limits.
func workerCount(multiplier float64, limit int) int {
	if override := os.Getenv(WorkersEnv); override != "" {
		n, err := strconv.Atoi(override)
		if err == nil && n > 0 {
			if limit > 0 && n > limit {
				return limit
			}
			return n
		}
		klog.Warningf("ignoring invalid %s=%q", WorkersEnv, override)
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	if limit > 0 && n > limit {
		n = limit
	}
	return n
}
