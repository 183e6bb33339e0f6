package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reference prefixes
const (
	ReferencePrefixCheckout = "CHK"
	ReferencePrefixWallet   = "WAL"
)

// NewReference generates a unique payment reference such as
// CHK-20250114093012-9F2C61AB04D7. Every payment attempt gets its own.
func NewReference(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + "-" + time.Now().UTC().Format("20060102150405") + "-" + id[:12]
}
