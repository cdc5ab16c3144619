// Package docs renders and maintains the auto-generated command section of a
// directory's README.
package docs

import (
	"strings"

	"github.com/starford/labdocs/internal/aggregate"
)

// Heading marks the start of the generated section. Everything from its first
// occurrence to the end of the file belongs to the generator.
const Heading = "## Terminal commands used (auto-generated)"

// Note is the paragraph closing the generated section.
const Note = "> Note: This section is auto-generated from the VS Code terminal log. " +
	"You can edit the suggested use case or add more details below each command to explain the exact lab step."

const (
	tableHeader    = "| Command | First seen | Suggested use case |"
	tableAlignment = "|---|---:|---|"
)

// Classifier assigns a use-case label to a command.
type Classifier interface {
	Classify(command string) string
}

// Render returns the generated section for a directory's command table. Rows
// follow the table's first-seen order.
func Render(table *aggregate.CommandTable, c Classifier) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Heading)
	b.WriteString("\n\n")
	b.WriteString(tableHeader)
	b.WriteString("\n")
	b.WriteString(tableAlignment)
	b.WriteString("\n")
	for cmd, ts := range table.All() {
		b.WriteString("| ")
		b.WriteString(codeSpan(cmd))
		b.WriteString(" | ")
		b.WriteString(escapeCell(ts))
		b.WriteString(" | ")
		b.WriteString(escapeCell(c.Classify(cmd)))
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
	b.WriteString(Note)
	b.WriteString("\n")
	return b.String()
}

// codeSpan wraps cmd in backticks, using a fence longer than any backtick run
// inside cmd.
func codeSpan(cmd string) string {
	cmd = escapeCell(cmd)
	longest, run := 0, 0
	for _, r := range cmd {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	if longest == 0 {
		return "`" + cmd + "`"
	}
	fence := strings.Repeat("`", longest+1)
	return fence + " " + cmd + " " + fence
}

// escapeCell keeps pipes from splitting a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
