package batching

import (
	"fmt"
	"time"
)

// BatchCode derives the unique, human-readable code for a batch. Zone 0
// stands for orders without a zone. seq starts at 1; higher sequences appear
// when an earlier batch for the same (date, zone) was locked and a successor
// is opened, since the base code is already taken.
func BatchCode(deliveryDate time.Time, zoneID *uint, seq int) string {
	code := fmt.Sprintf("B%s-Z%d", deliveryDate.Format("20060102"), zoneKey(zoneID))
	if seq > 1 {
		code = fmt.Sprintf("%s-%d", code, seq)
	}
	return code
}

// zoneKey maps an optional zone to a grouping key; nil collapses to 0.
func zoneKey(zoneID *uint) uint {
	if zoneID == nil {
		return 0
	}
	return *zoneID
}
