package ordergen

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GeneratedKey derives the idempotency anchor for one (subscription,
// delivery date) pair. The scheme is fixed: changing it would re-generate
// orders for already-processed dates.
func GeneratedKey(subscriptionID uint, deliveryDate time.Time) string {
	return fmt.Sprintf("sub:%d|delivery:%s", subscriptionID, deliveryDate.Format("2006-01-02"))
}

// OrderNo derives a short, human-readable order number from the generated
// key. Uniqueness of the key carries over, so no central counter is needed.
func OrderNo(generatedKey string) string {
	digest := sha1.Sum([]byte(generatedKey))
	return "O" + strings.ToUpper(hex.EncodeToString(digest[:])[:12])
}
