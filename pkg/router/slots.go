package router

import "strings"

// extractSlotsOptimized extracts the content of every data-slot element in
// a single pass. Slots whose content contains markup are returned in
// htmlSlots, the rest in textSlots.
func extractSlotsOptimized(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + len(marker)
		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			pos = slotStart
			continue
		}
		slotID := html[slotStart : slotStart+slotEnd]

		// Walk back to the '<' of the element carrying the attribute.
		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}
		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && !isTagNameEnd(html[tagNameEnd]) {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			pos = slotStart + slotEnd
			continue
		}
		contentStart := slotStart + slotEnd + closeAngle + 1

		contentEnd, searchPos := matchClose(html, tagName, contentStart)
		if contentEnd != -1 {
			content := strings.TrimSpace(html[contentStart:contentEnd])
			if strings.ContainsAny(content, "<>") {
				htmlSlots[slotID] = content
			} else {
				textSlots[slotID] = content
			}
		}

		pos = searchPos
	}

	return textSlots, htmlSlots
}

// matchClose finds the close tag balancing an element opened just before
// from, counting nested elements of the same name. It returns the index of
// the close tag (-1 if unbalanced) and where scanning should resume.
func matchClose(html, tagName string, from int) (contentEnd, resume int) {
	openTag := "<" + tagName
	closeTag := "</" + tagName
	htmlLen := len(html)

	depth := 1
	searchPos := from
	contentEnd = -1

	for depth > 0 && searchPos < htmlLen {
		nextClose := strings.Index(html[searchPos:], closeTag)
		if nextClose == -1 {
			break
		}
		nextClose += searchPos

		nextOpen := strings.Index(html[searchPos:], openTag)
		if nextOpen == -1 {
			nextOpen = htmlLen
		} else {
			nextOpen += searchPos
		}

		if nextOpen < nextClose {
			// "<navx" is not a nested "<nav".
			after := nextOpen + len(openTag)
			if after < htmlLen && isTagNameEnd(html[after]) {
				depth++
			}
			searchPos = after
			continue
		}

		depth--
		if depth == 0 {
			contentEnd = nextClose
		}
		searchPos = nextClose + len(closeTag)
	}

	return contentEnd, searchPos
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n'
}
