package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"CPAS", "CPAS"},
		{"CPAS, Logement ,,Santé", "CPAS|Logement|Santé"},
	}
	for _, tt := range tests {
		if got := strings.Join(splitList(tt.in), "|"); got != tt.want {
			t.Errorf("splitList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMCPTools(t *testing.T) {
	f := newFixture(t)
	srv := server.NewMCPServer("socialconnect-test", "0.0.1", server.WithToolCapabilities(false))
	RegisterMCPTools(srv, f.reg, f.st)

	call := func(tool, args string) string {
		t.Helper()
		msg := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"` + tool + `","arguments":` + args + `}}`
		resp := srv.HandleMessage(context.Background(), json.RawMessage(msg))
		data, err := json.Marshal(resp)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	tests := []struct {
		name     string
		tool     string
		args     string
		contains []string
		excludes []string
	}{
		{
			name:     "classify range",
			tool:     "classify_sector",
			args:     `{"address":"Chaussée de Mons 500"}`,
			contains: []string{`\"final_sector\":\"Vaillance\"`, `\"source\":\"range\"`},
		},
		{
			name:     "classify explicit",
			tool:     "classify_sector",
			args:     `{"sector":"parc","address":"Rue Bara 12"}`,
			contains: []string{`\"final_sector\":\"Parc\"`},
		},
		{
			name:     "detect with existing",
			tool:     "detect_keywords",
			args:     `{"notes":"Appel au CPAS, dossier clôturé","existing_problematiques":"Médiation","existing_actions":"Document"}`,
			contains: []string{`\"type\":\"CPAS\"`, `\"type\":\"Appel téléphonique\"`},
			excludes: []string{`\"type\":\"Médiation\"`, `\"type\":\"Document\"`},
		},
		{
			name:     "stats by service",
			tool:     "users_by_sector",
			args:     `{"service_id":"autre"}`,
			contains: []string{`[{\"name\":\"Cureghem\",\"value\":1}]`},
		},
		{
			name:     "stats by year",
			tool:     "users_by_sector",
			args:     `{"annee":2023}`,
			contains: []string{`[{\"name\":\"Cureghem\",\"value\":1}]`},
		},
		{
			name:     "stats negative year",
			tool:     "users_by_sector",
			args:     `{"annee":-5}`,
			contains: []string{`"isError":true`, "annee must be positive"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := call(tt.tool, tt.args)
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("response lacks %s: %s", want, out)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(out, bad) {
					t.Errorf("response contains %s: %s", bad, out)
				}
			}
		})
	}
}
