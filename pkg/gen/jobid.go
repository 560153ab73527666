package gen

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobIDGenerator produces the identifier that prefixes every file belonging
// to one transcription job. The second-resolution timestamp keeps names
// sorting chronologically; the uuid fragment keeps two jobs started within
// the same second from colliding.
type JobIDGenerator func() string

func JobID() JobIDGenerator {
	return func() string {
		id := uuid.Must(uuid.NewRandom())
		return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), id.String()[:8])
	}
}

func (g JobIDGenerator) Next() string {
	if g == nil {
		return ""
	}

	return g()
}
