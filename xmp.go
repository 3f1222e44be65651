package uhdrsplit

import (
	"bytes"
	"strings"
)

const (
	xmpNamespace = "http://ns.adobe.com/xap/1.0/"
	hdrgmPrefix  = "hdrgm:"
)

// ExtractXMP checks the XMP namespace signature of an APP1 payload and returns
// the text that follows it. Payloads of other APP1 users (EXIF, extended XMP)
// yield ErrNotXMP.
func ExtractXMP(payload []byte) (string, error) {
	if !bytes.HasPrefix(payload, []byte(xmpNamespace)) {
		return "", ErrNotXMP
	}
	return string(payload[len(xmpNamespace):]), nil
}

// matchAttribute finds the first hdrgm:<name>="<number>" attribute and returns the numeral.
func matchAttribute(text, name string) (string, bool) {
	prefix := hdrgmPrefix + name + `="`
	var num string
	found := eachIndex(text, prefix, func(pos int) bool {
		c := cursor{s: text, pos: pos + len(prefix)}
		var ok bool
		num, ok = c.number()
		return ok && c.literal(`"`)
	})
	return num, found
}

// matchSequence finds the first three-element rdf:Seq under <hdrgm:name> and returns its numerals.
func matchSequence(text, name string) ([3]string, bool) {
	open := "<" + hdrgmPrefix + name + ">"
	var nums [3]string
	found := eachIndex(text, open, func(pos int) bool {
		c := cursor{s: text, pos: pos + len(open)}
		return c.sequence(name, &nums)
	})
	return nums, found
}

// matchBool finds the first hdrgm:<name>="True"|"False" attribute.
func matchBool(text, name string) (value, found bool) {
	prefix := hdrgmPrefix + name + `="`
	found = eachIndex(text, prefix, func(pos int) bool {
		c := cursor{s: text, pos: pos + len(prefix)}
		switch {
		case c.literal(`True"`):
			value = true
			return true
		case c.literal(`False"`):
			value = false
			return true
		}
		return false
	})
	return value, found
}

// eachIndex calls fn with every position of sub in s until fn returns true.
func eachIndex(s, sub string, fn func(pos int) bool) bool {
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], sub)
		if i < 0 {
			return false
		}
		if fn(off + i) {
			return true
		}
		off += i + 1
	}
	return false
}

// cursor is a forward-only matcher over XMP text. Every method either
// consumes its construct and returns true, or leaves the position undefined
// and returns false; callers restart from a fresh cursor.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.s) {
		switch c.s[c.pos] {
		case ' ', '\t', '\n', '\r':
			c.pos++
		default:
			return
		}
	}
}

func (c *cursor) literal(lit string) bool {
	if !strings.HasPrefix(c.s[c.pos:], lit) {
		return false
	}
	c.pos += len(lit)
	return true
}

// tag matches optional whitespace followed by lit.
func (c *cursor) tag(lit string) bool {
	c.skipSpace()
	return c.literal(lit)
}

func (c *cursor) digits() bool {
	start := c.pos
	for c.pos < len(c.s) && c.s[c.pos] >= '0' && c.s[c.pos] <= '9' {
		c.pos++
	}
	return c.pos > start
}

// number matches -?\d+(\.\d+)? and returns the literal.
func (c *cursor) number() (string, bool) {
	start := c.pos
	if c.pos < len(c.s) && c.s[c.pos] == '-' {
		c.pos++
	}
	if !c.digits() {
		return "", false
	}
	if c.pos+1 < len(c.s) && c.s[c.pos] == '.' && c.s[c.pos+1] >= '0' && c.s[c.pos+1] <= '9' {
		c.pos++
		c.digits()
	}
	return c.s[start:c.pos], true
}

// sequence matches <rdf:Seq>, three <rdf:li> numerals and the closing tags of
// the sequence and of hdrgm:name.
func (c *cursor) sequence(name string, nums *[3]string) bool {
	if !c.tag("<rdf:Seq>") {
		return false
	}
	for i := range nums {
		if !c.tag("<rdf:li>") {
			return false
		}
		c.skipSpace()
		num, ok := c.number()
		if !ok {
			return false
		}
		nums[i] = num
		if !c.tag("</rdf:li>") {
			return false
		}
	}
	return c.tag("</rdf:Seq>") && c.tag("</"+hdrgmPrefix+name+">")
}
