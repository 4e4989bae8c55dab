package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/mcpquic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

var (
	mcpAddr     string
	mcpInsecure bool
	mcpTimeout  time.Duration
	mcpList     bool
)

var mcpCallCmd = &cobra.Command{
	Use:   "mcp-call <tool> [key=value...]",
	Short: "Call an MCP tool on a chassis server over QUIC",
	Long: `Connect to a server started with transport "chassis" and call one of
its MCP tools. Values that parse as JSON (numbers, booleans) are sent typed,
anything else is sent as a string.

Example:
  socialconnect mcp-call --list
  socialconnect mcp-call classify_sector "address=Chaussée de Mons 500"
  socialconnect mcp-call users_by_sector annee=2024`,
	RunE: runMCPCall,
}

func init() {
	rootCmd.AddCommand(mcpCallCmd)
	mcpCallCmd.Flags().StringVar(&mcpAddr, "addr", "localhost:8420", "chassis address")
	mcpCallCmd.Flags().BoolVar(&mcpInsecure, "insecure", true, "skip certificate verification (self-signed dev certs)")
	mcpCallCmd.Flags().DurationVar(&mcpTimeout, "timeout", 30*time.Second, "call timeout")
	mcpCallCmd.Flags().BoolVar(&mcpList, "list", false, "list the server's tools instead of calling one")
}

func runMCPCall(cmd *cobra.Command, args []string) error {
	if !mcpList && len(args) == 0 {
		return errors.New("missing tool name")
	}

	ctx, cancel := context.WithTimeout(context.Background(), mcpTimeout)
	defer cancel()

	c := mcpquic.NewClient(mcpAddr, mcpquic.ClientTLSConfig(mcpInsecure))
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	if mcpList {
		res, err := c.ListTools(ctx)
		if err != nil {
			return err
		}
		for _, t := range res.Tools {
			fmt.Fprintf(out, "%-20s %s\n", t.Name, t.Description)
		}
		return nil
	}

	toolArgs, err := parseToolArgs(args[1:])
	if err != nil {
		return err
	}
	res, err := c.CallTool(ctx, args[0], toolArgs)
	if err != nil {
		return err
	}
	text := toolText(res)
	if res.IsError {
		return fmt.Errorf("%s: %s", args[0], text)
	}
	writeToolText(out, text)
	return nil
}

// parseToolArgs turns key=value pairs into tool arguments.
func parseToolArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q: want key=value", p)
		}
		var typed any
		if err := json.Unmarshal([]byte(value), &typed); err == nil {
			switch typed.(type) {
			case float64, bool:
				out[key] = typed
				continue
			}
		}
		out[key] = value
	}
	return out, nil
}

func toolText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// writeToolText pretty-prints JSON results and passes anything else through.
func writeToolText(w io.Writer, text string) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		if printJSON(w, v) == nil {
			return
		}
	}
	fmt.Fprintln(w, text)
}
