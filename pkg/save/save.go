package save

import (
	"bytes"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/topology"
)

// Format decodes one save encoding.
type Format interface {
	// Name returns the format identifier (e.g., "json", "legacy").
	Name() string
	// Sniff reports whether this format handles input whose first
	// non-whitespace byte is first. first is 0 for blank input.
	Sniff(first byte) bool
	// Parse decodes data into a frozen graph.
	Parse(data []byte) (*Result, error)
}

// Result holds a loaded topology.
type Result struct {
	Graph    *topology.Graph    // frozen; HomeID and CurrentID are set
	Format   string             // name of the format that produced Graph
	Warnings []topology.Warning // recoverable issues, in input order
}

// Formats is the default detection order. Legacy accepts anything and must
// stay last.
var Formats = []Format{JSON{}, Legacy{}}

// Detect returns the first format whose Sniff accepts data.
// With no formats given it uses [Formats].
func Detect(data []byte, formats ...Format) (Format, error) {
	if len(formats) == 0 {
		formats = Formats
	}
	first := firstByte(data)
	for _, f := range formats {
		if f.Sniff(first) {
			return f, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeUnsupported, "no save format accepts input starting with %q", first)
}

func firstByte(data []byte) byte {
	trimmed := bytes.TrimLeft(data, " \t\r\n\v\f\ufeff")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// Load detects the format of data and decodes it.
func Load(data []byte) (*Result, error) {
	f, err := Detect(data)
	if err != nil {
		return nil, err
	}
	return f.Parse(data)
}

// Read decodes a save from r. Read does not close r.
func Read(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read save: %w", err)
	}
	return Load(data)
}

// ReadFile reads and decodes the save at path.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// builder collects nodes and warnings shared by both formats.
type builder struct {
	g        *topology.Graph
	warnings []topology.Warning
}

func newBuilder() *builder {
	return &builder{g: topology.New()}
}

func (b *builder) warn(w topology.Warning) {
	b.warnings = append(b.warnings, w)
}

// add inserts n; a repeated id replaces the earlier node in place.
func (b *builder) add(n topology.Node, line int) {
	err := b.g.AddNode(n)
	if err == nil {
		return
	}
	if err == topology.ErrDuplicateNodeID {
		_ = b.g.ReplaceNode(n)
		b.warn(topology.Warning{
			Kind:    topology.WarnDuplicateNode,
			NodeID:  n.ID,
			Line:    line,
			Message: "id reused, later entry replaces the earlier one",
		})
		return
	}
	b.warn(topology.Warning{
		Kind:    topology.WarnMalformedRecord,
		NodeID:  n.ID,
		Line:    line,
		Message: fmt.Sprintf("node skipped: %v", err),
	})
}

func (b *builder) finish(format string) *Result {
	b.warnings = append(b.warnings, b.g.Freeze()...)
	return &Result{Graph: b.g, Format: format, Warnings: b.warnings}
}
