package registry

import "github.com/zjrosen/portman/internal/config"

// Allocate returns the first free port admitted by cfg: ranges are scanned in
// the order configured, ascending within each range, skipping reserved ports
// and every port in used. The scan is fully deterministic so that repeated
// allocations against the same state are reproducible.
//
// Returns ErrAllocationExhausted when every candidate is reserved or used.
func Allocate(cfg config.Config, used map[uint16]struct{}) (uint16, error) {
	reserved := cfg.ReservedSet()
	for _, r := range cfg.Ranges {
		if len(r) != 2 {
			continue
		}
		// Iterate with an int to avoid uint16 wraparound at 65535.
		for candidate := int(r[0]); candidate <= int(r[1]); candidate++ {
			port := uint16(candidate)
			if _, ok := reserved[port]; ok {
				continue
			}
			if _, ok := used[port]; ok {
				continue
			}
			return port, nil
		}
	}
	return 0, ErrAllocationExhausted
}
