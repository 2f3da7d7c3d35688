// Package pattern implements a small `%(name)` mini-language that renders a
// LogRecord into a line of text. It compiles a pattern string once into a
// slice of render closures, then applies the compiled pattern to many
// records without re-parsing.
package pattern

import (
	"strconv"
	"strings"

	"github.com/nvashisth/alog/record"
)

// Default is the library's default rendering pattern.
const Default = "%(yyyy-mm-dd) %(hh:mm:ss).%(msec) %(level) %(process)[%(tid)] %(msg)"

// emitter renders one compiled field of a pattern into buf.
type emitter func(buf *strings.Builder, rec *record.LogRecord, process string)

// Pattern is a pattern string compiled once into a sequence of emitters,
// so rendering a record never re-parses the pattern.
type Pattern struct {
	emitters []emitter
}

// Compile parses a pattern string into a Pattern. Unrecognised `%(...)`
// groups render literally, and a bare trailing `%` or unterminated `%(`
// renders literally too — the parser never errors, treating anything it
// can't recognize as a plain string fallback.
func Compile(p string) *Pattern {
	if p == "" {
		p = Default
	}
	var emitters []emitter
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() == 0 {
			return
		}
		s := literal.String()
		emitters = append(emitters, func(buf *strings.Builder, _ *record.LogRecord, _ string) {
			buf.WriteString(s)
		})
		literal.Reset()
	}

	i := 0
	n := len(p)
	for i < n {
		ch := p[i]
		if ch != '%' {
			literal.WriteByte(ch)
			i++
			continue
		}
		// ch == '%'
		if i+1 >= n {
			literal.WriteByte('%')
			i++
			continue
		}
		switch p[i+1] {
		case '%':
			literal.WriteByte('%')
			i += 2
		case '(':
			end := strings.IndexByte(p[i+2:], ')')
			if end < 0 {
				// unterminated group: render the rest literally
				literal.WriteString(p[i:])
				i = n
				continue
			}
			name := p[i+2 : i+2+end]
			flushLiteral()
			if fn, ok := fieldEmitters[name]; ok {
				emitters = append(emitters, fn)
			} else {
				// unrecognised name: render the group literally
				group := p[i : i+2+end+1]
				emitters = append(emitters, func(buf *strings.Builder, _ *record.LogRecord, _ string) {
					buf.WriteString(group)
				})
			}
			i += 2 + end + 1
		default:
			literal.WriteByte('%')
			i++
		}
	}
	flushLiteral()

	return &Pattern{emitters: emitters}
}

var fieldEmitters = map[string]emitter{
	"year":  func(b *strings.Builder, r *record.LogRecord, _ string) { writeInt(b, r.Timestamp.Year(), 4) },
	"month": func(b *strings.Builder, r *record.LogRecord, _ string) { writeInt(b, int(r.Timestamp.Month()), 2) },
	"day":   func(b *strings.Builder, r *record.LogRecord, _ string) { writeInt(b, r.Timestamp.Day(), 2) },
	"hour":  func(b *strings.Builder, r *record.LogRecord, _ string) { writeInt(b, r.Timestamp.Hour(), 2) },
	"minute": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Minute(), 2)
	},
	"second": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Second(), 2)
	},
	"msec": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Nanosecond()/1e6, 3)
	},
	"usec": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Nanosecond()/1e3, 6)
	},
	"yyyy-mm-dd": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Year(), 4)
		b.WriteByte('-')
		writeInt(b, int(r.Timestamp.Month()), 2)
		b.WriteByte('-')
		writeInt(b, r.Timestamp.Day(), 2)
	},
	"hh:mm:ss": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, r.Timestamp.Hour(), 2)
		b.WriteByte(':')
		writeInt(b, r.Timestamp.Minute(), 2)
		b.WriteByte(':')
		writeInt(b, r.Timestamp.Second(), 2)
	},
	"level": func(b *strings.Builder, r *record.LogRecord, _ string) {
		b.WriteString(r.Level.String())
	},
	"msg": func(b *strings.Builder, r *record.LogRecord, _ string) {
		b.Write(r.Payload)
	},
	"process": func(b *strings.Builder, _ *record.LogRecord, process string) {
		b.WriteString(process)
	},
	"tid": func(b *strings.Builder, r *record.LogRecord, _ string) {
		writeInt(b, int(r.ProducerID), 0)
	},
}

func writeInt(b *strings.Builder, v int, width int) {
	s := strconv.Itoa(v)
	for len(s) < width {
		s = "0" + s
	}
	b.WriteString(s)
}

// Render formats rec according to the compiled pattern, appending to buf.
func (p *Pattern) Render(buf *strings.Builder, rec *record.LogRecord, process string) {
	for _, e := range p.emitters {
		e(buf, rec, process)
	}
}
