// Package truncate bounds the size of text returned from profiling and tool
// calls. Oversized content is cut at a fraction of the configured budget and
// marked; the complete body is archived so nothing is lost.
package truncate

import (
	"fmt"

	"go.uber.org/zap"
)

// Marker is appended to content that was cut for exceeding the budget.
const Marker = "\n\n[Content is too long and truncated....]"

// keepRatio is the fraction of the budget retained when cutting, leaving
// headroom for the marker and the archive pointer.
const keepRatio = 0.85

// Archiver persists a full response body and returns where it was written.
type Archiver interface {
	Archive(label, content string) (string, error)
}

// Truncator enforces a character budget on response text.
type Truncator struct {
	budget   int
	autoSave bool
	archiver Archiver
	logger   *zap.Logger
}

// New creates a Truncator with the given budget. When autoSave is on, every
// response body is archived even if nothing was cut. archiver may be nil, in
// which case truncated content is dropped without a side copy.
func New(budget int, autoSave bool, archiver Archiver, logger *zap.Logger) *Truncator {
	return &Truncator{
		budget:   budget,
		autoSave: autoSave,
		archiver: archiver,
		logger:   logger.Named("truncate"),
	}
}

// Budget returns the configured character budget.
func (t *Truncator) Budget() int {
	return t.budget
}

// Apply walks the segments of a response in order, keeping each one while the
// running total stays within budget. The segment that first overflows is cut
// to keepRatio of the configured budget (not of the remaining headroom) and
// gets the marker; every later segment is dropped. The returned slice has one
// entry per surviving segment.
func (t *Truncator) Apply(label string, segments []string) []string {
	total := 0
	for i, seg := range segments {
		if total+len(seg) <= t.budget {
			total += len(seg)
			continue
		}

		keep := int(keepRatio * float64(t.budget))
		if keep > len(seg) {
			keep = len(seg)
		}
		cut := seg[:keep] + Marker

		full := joinAll(segments)
		if path := t.archive(label, full); path != "" {
			cut += fmt.Sprintf("\n[Full content saved to: %s]", path)
		}

		t.logger.Warn("response truncated",
			zap.String("label", label),
			zap.Int("budget", t.budget),
			zap.Int("full_length", len(full)))

		out := make([]string, 0, i+1)
		out = append(out, segments[:i]...)
		return append(out, cut)
	}

	if t.autoSave {
		t.archive(label, joinAll(segments))
	}
	return segments
}

// Truncate bounds a single string, returning it unchanged when within budget.
func (t *Truncator) Truncate(label, text string) string {
	out := t.Apply(label, []string{text})
	if len(out) == 0 {
		return ""
	}
	return out[0]
}

func (t *Truncator) archive(label, content string) string {
	if t.archiver == nil {
		return ""
	}
	path, err := t.archiver.Archive(label, content)
	if err != nil {
		t.logger.Error("failed to archive response", zap.String("label", label), zap.Error(err))
		return ""
	}
	return path
}

func joinAll(segments []string) string {
	total := 0
	for _, s := range segments {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range segments {
		buf = append(buf, s...)
	}
	return string(buf)
}
