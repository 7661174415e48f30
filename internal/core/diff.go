package core

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/billcycle/internal/milestone"
)

// Diff renders both sets as tables and returns a line diff in which removed
// lines start with "-", added lines with "+" and common lines with a space.
// changed is false when the sets are identical.
func Diff(a, b milestone.Set) (out string, changed bool) {
	dmp := diffmatchpatch.New()

	// Line-mode diff
	chars1, chars2, lineArray := dmp.DiffLinesToChars(a.Table(), b.Table())
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var buf bytes.Buffer
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
			changed = true
		case diffmatchpatch.DiffInsert:
			prefix = "+"
			changed = true
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				buf.WriteByte('\n')
			}
		}
	}

	return buf.String(), changed
}
