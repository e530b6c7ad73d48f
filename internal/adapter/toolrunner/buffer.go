package toolrunner

import (
	"bytes"
	"sync"
)

const stderrCap = 64 * 1024

// cappedBuffer keeps the first stderrCap bytes written to it and drops
// the rest. Safe for the writes exec.Cmd performs from its copier
// goroutine alongside reads from the pipeline.
type cappedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if room := stderrCap - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
