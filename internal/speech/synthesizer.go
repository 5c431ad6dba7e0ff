// Package speech turns assistant text into playable audio files before the
// webhook response is built: the instruction document embeds the audio URL
// synchronously, so synthesis is a pipeline stage, not a side effect.
package speech

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Synthesizer renders text to an audio file named by the hint and returns
// the path the telephony provider can fetch it from (e.g. /audio/<name>.mp3).
type Synthesizer interface {
	Synthesize(ctx context.Context, text, name string) (string, error)
}

// Logger appends every spoken assistant line to an audit log, then delegates.
type Logger struct {
	next Synthesizer
	path string
}

func NewLogger(next Synthesizer, logPath string) *Logger {
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			log.Printf("speech log dir: %v", err)
			logPath = ""
		}
	}
	return &Logger{next: next, path: logPath}
}

func (l *Logger) Synthesize(ctx context.Context, text, name string) (string, error) {
	line := fmt.Sprintf("[AI][%s][%s] %s", time.Now().UTC().Format(time.RFC3339), name, text)
	log.Print(line)
	if l.path != "" {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(line + "\n")
			_ = f.Close()
		}
	}
	return l.next.Synthesize(ctx, text, name)
}
