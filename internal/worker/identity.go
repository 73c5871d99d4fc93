package worker

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Identity returns "<hostname>:<pid>", stable for the process lifetime,
// per spec.md §4.4. If the hostname can't be determined (sandboxed or
// unusual environments), a random id stands in for it so two workers on
// a host that can't report its own name still get distinct identities.
func Identity() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = uuid.NewString()
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}
