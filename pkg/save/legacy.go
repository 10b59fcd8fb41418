package save

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/netvis/pkg/topology"
)

// Legacy decodes the line-oriented format written by the game:
//
//	<count> <home> <current>
//	<id> <name> <security> <money> <link_count>     (per server)
//	<link> <link> ...                               (empty line if link_count is 0)
//	<role> <svc_count> [<port> <name> <vuln>]...    (optional)
//
// Older saves omit the role/services line entirely. It is recognised by its
// second field being an integer, which never holds for a server record
// whose second field is a name.
//
// Only a missing or unreadable header is fatal. Everything else falls back
// to defaults with a warning.
type Legacy struct{}

func (Legacy) Name() string { return "legacy" }

// Sniff accepts anything; Legacy is the fallback format.
func (Legacy) Sniff(byte) bool { return true }

func (f Legacy) Parse(data []byte) (*Result, error) {
	r := newLineReader(string(data))

	header, ok := r.nextNonBlank()
	if !ok {
		return nil, &ParseError{Format: f.Name(), Line: 1, Msg: "missing header"}
	}
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return nil, &ParseError{Format: f.Name(), Line: r.line, Msg: fmt.Sprintf("header needs 3 integers, got %d fields", len(fields))}
	}
	var hdr [3]int
	for i := range hdr {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, &ParseError{Format: f.Name(), Line: r.line, Column: column(header, i), Msg: fmt.Sprintf("header field %d is not an integer", i+1), Err: err}
		}
		hdr[i] = v
	}
	count := hdr[0]

	b := newBuilder()
	b.g.HomeID, b.g.CurrentID = hdr[1], hdr[2]
	var layout serviceLayout

	for i := 0; i < count; i++ {
		line, ok := r.nextNonBlank()
		if !ok {
			b.warn(topology.Warning{
				Kind:    topology.WarnMalformedRecord,
				NodeID:  topology.NoNode,
				Line:    r.line,
				Message: fmt.Sprintf("save ends after %d of %d server records", i, count),
			})
			break
		}
		f.readRecord(b, r, line, &layout)
	}

	return b.finish(f.Name()), nil
}

// readRecord consumes one server record whose first line is line.
func (f Legacy) readRecord(b *builder, r *lineReader, line string, layout *serviceLayout) {
	recordLine := r.line
	fields := strings.Fields(line)
	rec := fieldReader{b: b, line: recordLine, fields: fields, nodeID: topology.NoNode}

	id, idOK := rec.int(0, "id")
	if idOK {
		rec.nodeID = id
	}
	n := topology.Node{ID: id}
	if len(fields) > 1 {
		n.Name = fields[1]
	} else {
		rec.warnf("missing name")
	}
	n.Security, _ = rec.int(2, "security")
	n.Money, _ = rec.int(3, "money")
	linkCount, _ := rec.int(4, "link count")
	n.Tier = topology.InferTier(n.Name)

	// The links line is present even when empty.
	linksLine, ok := r.next()
	if ok && linkCount > 0 {
		n.Links = f.readLinks(b, rec.nodeID, r.line, linksLine)
		if len(n.Links) != linkCount {
			b.warn(topology.Warning{
				Kind:    topology.WarnMalformedRecord,
				NodeID:  rec.nodeID,
				Line:    r.line,
				Message: fmt.Sprintf("link count says %d, line holds %d", linkCount, len(n.Links)),
			})
		}
	}

	if svcLine, ok := r.peek(); ok && strings.TrimSpace(svcLine) != "" && layout.hasServiceLine(svcLine) {
		r.next()
		n.Role, n.Services = f.readServices(b, rec.nodeID, r.line, svcLine)
	}

	if !idOK {
		rec.warnf("record skipped: no usable id")
		return
	}
	b.add(n, recordLine)
}

func (Legacy) readLinks(b *builder, nodeID, lineNo int, line string) []int {
	var links []int
	for _, tok := range strings.Fields(line) {
		v, err := strconv.Atoi(tok)
		if err != nil {
			b.warn(topology.Warning{
				Kind:    topology.WarnMalformedRecord,
				NodeID:  nodeID,
				Line:    lineNo,
				Message: fmt.Sprintf("link %q is not an integer, dropped", tok),
			})
			continue
		}
		links = append(links, v)
	}
	return links
}

func (Legacy) readServices(b *builder, nodeID, lineNo int, line string) (int, []topology.Service) {
	rec := fieldReader{b: b, line: lineNo, fields: strings.Fields(line), nodeID: nodeID}
	role, _ := rec.optionalInt(0, "role")
	svcCount, _ := rec.optionalInt(1, "service count")

	var services []topology.Service
	idx := 2
	for i := 0; i < svcCount; i, idx = i+1, idx+3 {
		if idx+2 >= len(rec.fields) {
			rec.warnf("services line holds %d of %d services, rest dropped", i, svcCount)
			break
		}
		port, perr := strconv.Atoi(rec.fields[idx])
		vuln, verr := strconv.Atoi(rec.fields[idx+2])
		if perr != nil || verr != nil {
			rec.warnf("service %d is malformed, dropped", i+1)
			continue
		}
		services = append(services, topology.Service{Name: rec.fields[idx+1], Port: port, Vulnerability: vuln})
	}
	return role, services
}

// serviceLayout records whether the save's records end with a role/services
// line. Older saves omit it. The first record that can tell decides for the
// whole file, so a malformed services line later on is still consumed.
type serviceLayout int

const (
	layoutUnknown serviceLayout = iota
	layoutWithServices
	layoutWithoutServices
)

// hasServiceLine reports whether next, the line after a record's links,
// belongs to that record.
func (l *serviceLayout) hasServiceLine(next string) bool {
	switch *l {
	case layoutWithServices:
		return true
	case layoutWithoutServices:
		return false
	}
	if isServiceLine(next) {
		*l = layoutWithServices
		return true
	}
	*l = layoutWithoutServices
	return false
}

// isServiceLine reports whether line is a role/services line rather than the
// next server record. A record has an integer id, a name and an integer
// link count in its fifth field.
func isServiceLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return true
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return true
	}
	if _, err := strconv.Atoi(fields[1]); err == nil {
		return true
	}
	_, err := strconv.Atoi(fields[4])
	return err != nil
}

// fieldReader reads integer fields of one line, warning on bad values.
type fieldReader struct {
	b      *builder
	line   int
	fields []string
	nodeID int
}

func (fr *fieldReader) warnf(format string, args ...any) {
	fr.b.warn(topology.Warning{
		Kind:    topology.WarnMalformedRecord,
		NodeID:  fr.nodeID,
		Line:    fr.line,
		Message: fmt.Sprintf(format, args...),
	})
}

// int reads field i, defaulting to 0 with a warning when missing or bad.
func (fr *fieldReader) int(i int, what string) (int, bool) {
	if i >= len(fr.fields) {
		fr.warnf("missing %s, using 0", what)
		return 0, false
	}
	v, err := strconv.Atoi(fr.fields[i])
	if err != nil {
		fr.warnf("%s %q is not an integer, using 0", what, fr.fields[i])
		return 0, false
	}
	return v, true
}

// optionalInt is like int but a missing field is not worth a warning.
func (fr *fieldReader) optionalInt(i int, what string) (int, bool) {
	if i >= len(fr.fields) {
		return 0, false
	}
	return fr.int(i, what)
}

// column returns the 1-based column of whitespace-separated field i.
func column(line string, i int) int {
	col, field, inField := 0, -1, false
	for pos, c := range line {
		space := c == ' ' || c == '\t'
		if !space && !inField {
			field++
			if field == i {
				col = pos + 1
				break
			}
		}
		inField = !space
	}
	return col
}

// lineReader walks input line by line, tracking 1-based line numbers.
type lineReader struct {
	lines []string
	pos   int
	line  int // number of the line last returned by next
}

func newLineReader(s string) *lineReader {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	var lines []string
	if s != "" {
		lines = strings.Split(s, "\n")
	}
	return &lineReader{lines: lines}
}

func (r *lineReader) next() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	l := r.lines[r.pos]
	r.pos++
	r.line = r.pos
	return l, true
}

func (r *lineReader) peek() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos], true
}

func (r *lineReader) nextNonBlank() (string, bool) {
	for {
		l, ok := r.next()
		if !ok || strings.TrimSpace(l) != "" {
			return l, ok
		}
	}
}
