package username

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// maxAttempts bounds the availability-check retry loop so a pathological
// CheckFunc cannot spin forever.
const maxAttempts = 10

// CheckFunc reports whether a candidate username is available. It is
// called without any lock held, so it may perform I/O.
type CheckFunc func(name string) bool

// FromEmail derives a username from the address's local part and a
// random numeric suffix in [0, 1000). The suffix lowers, but does not
// eliminate, the chance of collisions; callers that need uniqueness use
// FromEmailWithCheck or rely on a storage-level unique constraint.
func FromEmail(email string) string {
	base := localPart(email)

	mu.Lock()
	suffix := rnd.Intn(1000)
	mu.Unlock()

	return fmt.Sprintf("%s%d", base, suffix)
}

// FromEmailWithCheck generates candidates until check accepts one, up
// to a bounded number of attempts. Returns the last candidate and false
// when every attempt was rejected.
func FromEmailWithCheck(email string, check CheckFunc) (string, bool) {
	var candidate string
	for range maxAttempts {
		candidate = FromEmail(email)
		if check(candidate) {
			return candidate, true
		}
	}
	return candidate, false
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
