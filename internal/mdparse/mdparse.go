// Package mdparse extracts fenced code blocks from Markdown text. Agents
// often wrap their JSON in one or more fences surrounded by prose.
package mdparse

import (
	"bufio"
	"strings"
)

// Block is a fenced code block found in a Markdown document.
type Block struct {
	// Info is the info string after the opening fence, e.g. "json".
	Info      string
	Body      string
	LineStart int
	LineEnd   int
	// Closed is false when the document ended before a closing fence, which
	// happens when a response is truncated.
	Closed bool
}

// FencedBlocks returns every top-level fenced block in text in document order.
// An unclosed final fence yields a block running to the end of the text.
func FencedBlocks(text string) []Block {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	// Agent responses put a whole schedule on one line surprisingly often.
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanner.Err() != nil {
		// A line past the buffer cap stops the scanner; split the whole text.
		lines = splitLines(text)
	}

	var blocks []Block
	var openFence string
	var cur *Block
	var body []string
	for i, line := range lines {
		lineNum := i + 1
		if openFence != "" {
			if isClosingFence(line, openFence) {
				cur.Body = strings.Join(body, "\n")
				cur.LineEnd = lineNum
				cur.Closed = true
				blocks = append(blocks, *cur)
				openFence, cur, body = "", nil, nil
				continue
			}
			body = append(body, line)
			continue
		}
		fp := fencePrefix(line)
		if fp == "" {
			continue
		}
		openFence = fp
		info := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), fp[:1]))
		cur = &Block{Info: strings.ToLower(info), LineStart: lineNum}
	}
	if cur != nil {
		cur.Body = strings.Join(body, "\n")
		cur.LineEnd = len(lines)
		blocks = append(blocks, *cur)
	}
	return blocks
}

// HasFence reports whether text contains at least one fence line.
func HasFence(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if fencePrefix(line) != "" {
			return true
		}
	}
	return false
}

// fencePrefix returns the opening fence string (e.g. "```" or "~~~~") if line
// starts a fenced code block, otherwise returns "".
// CommonMark allows up to 3 leading spaces before the fence marker.
func fencePrefix(line string) string {
	leading := 0
	for leading < len(line) && line[leading] == ' ' {
		leading++
	}
	if leading >= 4 {
		return "" // indented code block, not a fence
	}
	stripped := line[leading:]
	for _, marker := range []byte{'`', '~'} {
		if len(stripped) < 3 || stripped[0] != marker {
			continue
		}
		count := 0
		for count < len(stripped) && stripped[count] == marker {
			count++
		}
		if count >= 3 {
			return stripped[:count]
		}
	}
	return ""
}

// isClosingFence returns true if line is a valid closing fence for openFence:
// same fence character, at least as long, nothing but spaces after it.
func isClosingFence(line, openFence string) bool {
	if len(openFence) == 0 {
		return false
	}
	fp := fencePrefix(line)
	if fp == "" || fp[0] != openFence[0] || len(fp) < len(openFence) {
		return false
	}
	leading := 0
	for leading < len(line) && line[leading] == ' ' {
		leading++
	}
	rest := strings.TrimLeft(line[leading+len(fp):], " ")
	return rest == ""
}

func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
