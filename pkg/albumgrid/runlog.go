package albumgrid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// Sink receives progress lines from a build. The zero Sink (nil) is valid
// everywhere one is accepted; lines then go to klog only.
type Sink interface {
	Logf(format string, args ...any)
}

// logf sends a line to s, or to klog when s is nil.
func logf(s Sink, format string, args ...any) {
	if s == nil {
		klog.Infof(format, args...)
		return
	}
	s.Logf(format, args...)
}

// RunLog collects the lines of one build so they can be appended to a dated
// log file afterwards. Every line is also mirrored to klog as it arrives.
type RunLog struct {
	lines []string
}

// NewRunLog returns an empty run log.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// Logf records one line.
func (rl *RunLog) Logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	klog.Info(line)
	rl.lines = append(rl.lines, line)
}

// Head records the opening block of a run: when it started, a run id, and
// the configuration in effect.
func (rl *RunLog) Head(c *Config) {
	rl.Logf("%s", time.Now().Format("2006-01-02 15:04:05"))
	rl.Logf("run:\t\t%s", uuid.NewString())
	rl.Logf("image dir:\t%s", c.InDir)
	rl.Logf("thumb dir:\t%s", c.ThumbDir)
	rl.Logf("thumb size:\t%s", c.ThumbSize)
	rl.Logf("thumb name:\t*%s%s", c.ThumbTail, c.ThumbExt)
	rl.Logf("extensions:\t%s", strings.Join(c.Exts, " "))
}

// Flush appends the collected lines to dir/YYYYMMDD.txt, with two blank
// lines separating this run from any earlier one in the same file.
func (rl *RunLog) Flush(dir string) error {
	if len(rl.lines) == 0 {
		return nil
	}
	path := filepath.Join(dir, time.Now().Format("20060102")+".txt")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil && fi.Size() > 0 {
		if _, err := f.WriteString("\n\n"); err != nil {
			return fmt.Errorf("write run log: %w", err)
		}
	}
	if _, err := f.WriteString(strings.Join(rl.lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}
