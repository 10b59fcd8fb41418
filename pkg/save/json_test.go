package save

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/topology"
)

func TestJSON_Sniff(t *testing.T) {
	tests := []struct {
		first byte
		want  bool
	}{
		{'{', true},
		{'[', true},
		{'3', false},
		{0, false},
	}
	for _, tt := range tests {
		if got := (JSON{}).Sniff(tt.first); got != tt.want {
			t.Errorf("Sniff(%q) = %v, want %v", tt.first, got, tt.want)
		}
	}
}

func TestJSON_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantHome    int
		wantCurrent int
	}{
		{
			name: "list",
			data: `[{"id": 1, "name": "isp_1"}, {"id": 2, "name": "area_1", "links": [1]}]`,
		},
		{
			name:        "servers object",
			data:        `{"servers": [{"id": 1, "name": "isp_1"}, {"id": 2, "name": "area_1"}], "home_server": 2, "current_server": 1}`,
			wantHome:    2,
			wantCurrent: 1,
		},
		{
			name:        "game object",
			data:        `{"game": {"servers": [{"id": 1, "name": "isp_1"}, {"id": 2, "name": "area_1"}], "home_server": 1, "current_server": 2}}`,
			wantHome:    1,
			wantCurrent: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := JSON{}.Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if res.Format != "json" {
				t.Errorf("Format = %q, want json", res.Format)
			}
			if got := res.Graph.IDs(); !reflect.DeepEqual(got, []int{1, 2}) {
				t.Errorf("IDs = %v, want [1 2]", got)
			}
			if res.Graph.HomeID != tt.wantHome || res.Graph.CurrentID != tt.wantCurrent {
				t.Errorf("home/current = %d/%d, want %d/%d",
					res.Graph.HomeID, res.Graph.CurrentID, tt.wantHome, tt.wantCurrent)
			}
			if !res.Graph.Frozen() {
				t.Error("graph not frozen")
			}
		})
	}
}

func TestJSON_Tier(t *testing.T) {
	tests := []struct {
		name     string
		server   string
		want     topology.Tier
		wantWarn bool
	}{
		{"type wins over tier", `{"id": 1, "name": "x", "type": "access_switch", "tier": "floor"}`, topology.TierToR, false},
		{"type is case-insensitive", `{"id": 1, "name": "x", "type": "Distribution_Router"}`, topology.TierRouter, false},
		{"canonical type", `{"id": 1, "name": "x", "type": "backbone"}`, topology.TierBackbone, false},
		{"tier field", `{"id": 1, "name": "x", "tier": "Rack"}`, topology.TierRack, false},
		{"unmapped type kept", `{"id": 1, "name": "isp_x", "type": "quantum_relay"}`, topology.Tier("quantum_relay"), true},
		{"unmapped tier kept", `{"id": 1, "name": "x", "tier": "Mesh"}`, topology.Tier("Mesh"), true},
		{"name inference", `{"id": 1, "name": "ISP_Main"}`, topology.TierISP, false},
		{"fallback host", `{"id": 1, "name": "mailbox"}`, topology.TierHost, false},
		{"empty type falls through", `{"id": 1, "name": "floor_3", "type": ""}`, topology.TierFloor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := JSON{}.Parse([]byte("[" + tt.server + "]"))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			n, _ := res.Graph.Node(1)
			if n.Tier != tt.want {
				t.Errorf("Tier = %q, want %q", n.Tier, tt.want)
			}
			gotWarn := topology.CountByKind(res.Warnings)[topology.WarnUnmappedTier] > 0
			if gotWarn != tt.wantWarn {
				t.Errorf("unmapped warning = %v, want %v (%v)", gotWarn, tt.wantWarn, res.Warnings)
			}
		})
	}
}

func TestJSON_Defaults(t *testing.T) {
	res, err := JSON{}.Parse([]byte(`[{}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, ok := res.Graph.Node(0)
	if !ok {
		t.Fatal("node 0 missing")
	}
	if n.Name != "" || n.Security != 0 || n.Money != 0 || len(n.Links) != 0 || len(n.Services) != 0 {
		t.Errorf("node = %+v, want zero values", n)
	}
	if n.Tier != topology.TierHost {
		t.Errorf("Tier = %q, want host", n.Tier)
	}
}

func TestJSON_Coercion(t *testing.T) {
	data := `[
		{"id": "1", "name": "isp_1", "security": 2.9, "money": null, "links": ["2", 3.0, true, null]},
		{"id": 2, "name": 42},
		{"id": 3}
	]`
	res, err := JSON{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := res.Graph.Node(1)
	if n.Security != 2 {
		t.Errorf("Security = %d, want 2", n.Security)
	}
	if n.Money != 0 {
		t.Errorf("Money = %d, want 0", n.Money)
	}
	// true -> 1 is a self link, null -> 0 is dangling.
	if want := []int{2, 3, 1}; !reflect.DeepEqual(n.Links, want) {
		t.Errorf("Links = %v, want %v", n.Links, want)
	}
	if got := topology.CountByKind(res.Warnings)[topology.WarnDanglingReference]; got != 1 {
		t.Errorf("dangling warnings = %d, want 1", got)
	}
	n2, _ := res.Graph.Node(2)
	if n2.Name != "42" {
		t.Errorf("Name = %q, want %q", n2.Name, "42")
	}
}

func TestJSON_Services(t *testing.T) {
	data := `[{"id": 1, "services": [
		{"name": "ssh", "port": 22, "vuln": 3},
		{"svc": "http", "port": "80", "vuln_level": 1},
		{"name": "ftp", "svc": "ignored", "port": 21, "vuln": 0, "vuln_level": 5},
		{}
	]}]`
	res, err := JSON{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := res.Graph.Node(1)
	want := []topology.Service{
		{Name: "ssh", Port: 22, Vulnerability: 3},
		{Name: "http", Port: 80, Vulnerability: 1},
		{Name: "ftp", Port: 21, Vulnerability: 0},
		{},
	}
	if !reflect.DeepEqual(n.Services, want) {
		t.Errorf("Services = %+v, want %+v", n.Services, want)
	}
}

func TestJSON_HomeNameOverrides(t *testing.T) {
	data := `{"game": {"home_server": 1, "current_server": 1, "servers": [
		{"id": 1, "name": "isp_1"},
		{"id": 7, "name": "home", "links": [1]}
	]}}`
	res, err := JSON{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Graph.HomeID != 7 || res.Graph.CurrentID != 7 {
		t.Errorf("home/current = %d/%d, want 7/7", res.Graph.HomeID, res.Graph.CurrentID)
	}
}

func TestJSON_DanglingLink(t *testing.T) {
	data := `[{"id": 1, "name": "isp", "links": [2, 99]}, {"id": 2, "name": "area", "links": [1]}]`
	res, err := JSON{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, _ := res.Graph.Node(1)
	if !reflect.DeepEqual(n.Links, []int{2}) {
		t.Errorf("Links = %v, want [2]", n.Links)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want 1", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Kind != topology.WarnDanglingReference || w.NodeID != 1 || w.Ref != 99 {
		t.Errorf("warning = %+v", w)
	}
	if res.Graph.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", res.Graph.EdgeCount())
	}
}

func TestJSON_DuplicateID(t *testing.T) {
	data := `[{"id": 1, "name": "first"}, {"id": 2}, {"id": 1, "name": "second"}]`
	res, err := JSON{}.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := res.Graph.IDs(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("IDs = %v, want [1 2]", got)
	}
	n, _ := res.Graph.Node(1)
	if n.Name != "second" {
		t.Errorf("Name = %q, want second", n.Name)
	}
	if got := topology.CountByKind(res.Warnings)[topology.WarnDuplicateNode]; got != 1 {
		t.Errorf("duplicate warnings = %d, want 1", got)
	}
}

func TestJSON_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantLine int
		wantPath string
	}{
		{"syntax", "{\n  \"servers\": [\n    {\"id\": 1,,}\n  ]\n}", 3, ""},
		{"truncated", `[{"id": 1}`, 1, ""},
		{"servers not a list", `{"servers": 5}`, 1, "servers"},
		{"nested servers not a list", `{"game": {"servers": 5}}`, 0, "game.servers"},
		{"bad links", `[{"id": 1, "links": {"a": 1}}]`, 0, "servers[0].links"},
		{"bad id", `[{"id": "abc"}]`, 0, "servers[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := JSON{}.Parse([]byte(tt.data))
			if err == nil {
				t.Fatalf("Parse succeeded with %d nodes, want error", res.Graph.NodeCount())
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Format != "json" {
				t.Errorf("Format = %q, want json", pe.Format)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
			if tt.wantPath != "" && pe.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", pe.Path, tt.wantPath)
			}
			if strings.Contains(err.Error(), "jsonGame") || strings.Contains(err.Error(), "jsonRoot") {
				t.Errorf("error %q leaks decoder type names", err)
			}
			if !apperrors.Is(err, apperrors.ErrCodeParse) {
				t.Errorf("error code = %q, want %q", apperrors.GetCode(err), apperrors.ErrCodeParse)
			}
		})
	}
}
