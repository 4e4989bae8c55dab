package api

import (
	"context"
	"strings"

	"github.com/hazyhaar/socialconnect-core/pkg/catalog"
	"github.com/hazyhaar/socialconnect-core/pkg/kit"
	"github.com/hazyhaar/socialconnect-core/pkg/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the SocialConnect MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *catalog.Registry, st *store.Store) {
	registerClassifySector(srv, reg)
	registerDetectKeywords(srv, reg)
	registerUsersBySector(srv, reg, st)
}

func registerClassifySector(srv *server.MCPServer, reg *catalog.Registry) {
	tool := mcp.NewTool("classify_sector",
		mcp.WithDescription("Resolve the neighbourhood sector of a case record from its explicit sector or its street address."),
		mcp.WithString("address", mcp.Description("Street address, e.g. \"Chaussée de Mons 500\"")),
		mcp.WithString("sector", mcp.Description("Sector already recorded on the file, if any")),
	)

	kit.RegisterMCPTool(srv, tool, classifySectorEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		address, _ := args["address"].(string)
		sector, _ := args["sector"].(string)
		return &kit.MCPDecodeResult{Request: &classifySectorReq{ExplicitSector: sector, AddressStreet: address}}, nil
	})
}

func registerDetectKeywords(srv *server.MCPServer, reg *catalog.Registry) {
	tool := mcp.NewTool("detect_keywords",
		mcp.WithDescription("Detect problématiques and actions mentioned in free-text case notes (French)."),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Case notes to analyze")),
		mcp.WithString("existing_problematiques", mcp.Description("Comma-separated problématique types already on file")),
		mcp.WithString("existing_actions", mcp.Description("Comma-separated action types already on file")),
	)

	kit.RegisterMCPTool(srv, tool, detectEndpoint(reg), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		notes, _ := args["notes"].(string)
		existingP, _ := args["existing_problematiques"].(string)
		existingA, _ := args["existing_actions"].(string)
		return &kit.MCPDecodeResult{Request: &detectReq{
			Notes:                  notes,
			ExistingProblematiques: splitList(existingP),
			ExistingActions:        splitList(existingA),
		}}, nil
	})
}

func registerUsersBySector(srv *server.MCPServer, reg *catalog.Registry, st *store.Store) {
	tool := mcp.NewTool("users_by_sector",
		mcp.WithDescription("Count case records per sector, optionally for one year and one service."),
		mcp.WithNumber("annee", mcp.Description("Year filter, e.g. 2024")),
		mcp.WithString("service_id", mcp.Description("Restrict to one social service")),
	)

	kit.RegisterMCPTool(srv, tool, usersBySectorEndpoint(reg, st), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		annee, _ := args["annee"].(float64)
		res := &kit.MCPDecodeResult{Request: &usersBySectorReq{Annee: int(annee)}}
		if svc, _ := args["service_id"].(string); svc != "" {
			res.EnrichCtx = func(ctx context.Context) context.Context {
				return kit.WithServiceID(ctx, svc)
			}
		}
		return res, nil
	})
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
