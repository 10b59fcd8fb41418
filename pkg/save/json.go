package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/netvis/pkg/topology"
)

// homeName is the server name that pins both distinguished ids.
const homeName = "home"

// JSON decodes the structured exporter format.
//
// Accepted shapes:
//
//	[ {server}, ... ]
//	{"servers": [...], "home_server": 1, "current_server": 1}
//	{"game": {"servers": [...], "home_server": 1, "current_server": 1}}
//
// A server entry:
//
//	{"id": 4, "name": "rtr_floor_2", "security": 3, "money": 120,
//	 "links": [1, 7], "type": "distribution_router",
//	 "services": [{"name": "ssh", "port": 22, "vuln": 2}]}
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Sniff(first byte) bool { return first == '{' || first == '[' }

type jsonGame struct {
	Servers       []json.RawMessage `json:"servers"`
	HomeServer    *flexInt          `json:"home_server"`
	CurrentServer *flexInt          `json:"current_server"`
}

// jsonRoot lists its fields rather than embedding jsonGame: decode errors
// name fields by their Go path, and that path is shown to users.
type jsonRoot struct {
	Servers       []json.RawMessage `json:"servers"`
	HomeServer    *flexInt          `json:"home_server"`
	CurrentServer *flexInt          `json:"current_server"`
	Game          json.RawMessage   `json:"game"`
}

type jsonServer struct {
	ID       flexInt       `json:"id"`
	Name     flexString    `json:"name"`
	Security flexInt       `json:"security"`
	Money    flexInt       `json:"money"`
	Links    []flexInt     `json:"links"`
	Type     flexString    `json:"type"`
	Tier     flexString    `json:"tier"`
	Services []jsonService `json:"services"`
}

type jsonService struct {
	Name      flexString `json:"name"`
	Svc       flexString `json:"svc"`
	Port      flexInt    `json:"port"`
	Vuln      *flexInt   `json:"vuln"`
	VulnLevel *flexInt   `json:"vuln_level"`
}

func (f JSON) Parse(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	var game jsonGame
	switch firstByte(data) {
	case '[':
		if err := json.Unmarshal(data, &game.Servers); err != nil {
			return nil, f.parseError(data, "", err)
		}
	case '{':
		var root jsonRoot
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, f.parseError(data, "", err)
		}
		game = jsonGame{Servers: root.Servers, HomeServer: root.HomeServer, CurrentServer: root.CurrentServer}
		if firstByte(root.Game) == '{' {
			var nested jsonGame
			if err := json.Unmarshal(root.Game, &nested); err != nil {
				return nil, f.parseError(nil, "game", err)
			}
			game = nested
		}
	default:
		return nil, &ParseError{Format: f.Name(), Line: 1, Column: 1, Msg: "expected a JSON object or array"}
	}

	b := newBuilder()
	if game.HomeServer != nil {
		b.g.HomeID = int(*game.HomeServer)
	}
	if game.CurrentServer != nil {
		b.g.CurrentID = int(*game.CurrentServer)
	}

	for i, raw := range game.Servers {
		var s jsonServer
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, f.parseError(nil, fmt.Sprintf("servers[%d]", i), err)
		}
		n := s.node()
		n.Tier = f.resolveTier(s, b, n.ID)
		b.add(n, 0)

		if n.Name == homeName {
			b.g.HomeID = n.ID
			b.g.CurrentID = n.ID
		}
	}

	return b.finish(f.Name()), nil
}

func (s jsonServer) node() topology.Node {
	n := topology.Node{
		ID:       int(s.ID),
		Name:     string(s.Name),
		Security: int(s.Security),
		Money:    int(s.Money),
	}
	if len(s.Links) > 0 {
		n.Links = make([]int, len(s.Links))
		for i, l := range s.Links {
			n.Links[i] = int(l)
		}
	}
	for _, svc := range s.Services {
		n.Services = append(n.Services, svc.service())
	}
	return n
}

func (s jsonService) service() topology.Service {
	name := string(s.Name)
	if name == "" {
		name = string(s.Svc)
	}
	var vuln int
	switch {
	case s.Vuln != nil:
		vuln = int(*s.Vuln)
	case s.VulnLevel != nil:
		vuln = int(*s.VulnLevel)
	}
	return topology.Service{Name: name, Port: int(s.Port), Vulnerability: vuln}
}

// resolveTier applies type, then tier, then name inference.
func (JSON) resolveTier(s jsonServer, b *builder, id int) topology.Tier {
	raw, field := string(s.Type), "type"
	if raw == "" {
		raw, field = string(s.Tier), "tier"
	}
	if raw == "" {
		return topology.InferTier(string(s.Name))
	}
	tier, ok := topology.ParseType(raw)
	if !ok {
		b.warn(topology.Warning{
			Kind:    topology.WarnUnmappedTier,
			NodeID:  id,
			Message: fmt.Sprintf("%s %q has no tier mapping, kept verbatim", field, raw),
		})
	}
	return tier
}

func (f JSON) parseError(data []byte, path string, err error) *ParseError {
	pe := &ParseError{Format: f.Name(), Path: path, Err: err}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		pe.Line, pe.Column = position(data, syntaxErr.Offset)
		pe.Msg = "invalid JSON"
	case errors.As(err, &typeErr):
		if data != nil {
			pe.Line, pe.Column = position(data, typeErr.Offset)
		}
		if typeErr.Field != "" {
			pe.Path = joinPath(path, typeErr.Field)
		}
		pe.Msg = "unexpected " + typeErr.Value
		// The decoder's own message names Go types; Path and Msg already say it.
		pe.Err = nil
	}
	return pe
}

func joinPath(parent, field string) string {
	if parent == "" {
		return field
	}
	return parent + "." + field
}

// flexInt decodes numbers, numeric strings and booleans as an int. null
// decodes as 0 and fractional numbers are truncated.
type flexInt int

func (v *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch s {
	case "null":
		*v = 0
		return nil
	case "true":
		*v = 1
		return nil
	case "false":
		*v = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	if i, err := strconv.Atoi(s); err == nil {
		*v = flexInt(i)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(fl) || math.IsInf(fl, 0) {
		return fmt.Errorf("cannot use %s as an integer", string(b))
	}
	*v = flexInt(int(fl))
	return nil
}

// flexString decodes strings as-is and scalars by their JSON text. null
// decodes as "".
type flexString string

func (v *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		*v = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = flexString(str)
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		return fmt.Errorf("cannot use %s as a string", s)
	default:
		*v = flexString(s)
	}
	return nil
}
