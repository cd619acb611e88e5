// Command trigger runs searches on a jobscout server over MCP.
//
//	trigger [-endpoint URL] run-search <search-id>
//	trigger [-endpoint URL] run-provider <provider>
//	trigger [-endpoint URL] list-runs <search-id> [limit]
//	trigger [-endpoint URL] export-runs <search-id> <spreadsheet-id> [tab]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/mcp/stream", "MCP streamable HTTP endpoint")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: trigger [-endpoint URL] run-search <id> | run-provider <name> | list-runs <id> [limit] | export-runs <id> <spreadsheet-id> [tab]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	params, err := toolCall(flag.Args())
	if err != nil {
		flag.Usage()
		log.Fatal(err)
	}

	// Interrupting cancels the tool call, which cancels the run server-side.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := mcp.NewClient(&mcp.Implementation{Name: "jobscout-trigger", Version: "0.2.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: *endpoint}, nil)
	if err != nil {
		log.Fatalf("connect %s: %v", *endpoint, err)
	}
	defer func() { _ = session.Close() }()

	result, err := session.CallTool(ctx, params)
	if err != nil {
		log.Fatalf("%s: %v", params.Name, err)
	}

	printResult(result)
	if result.IsError {
		os.Exit(1)
	}
}

func toolCall(args []string) (*mcp.CallToolParams, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("missing command or argument")
	}

	switch cmd := args[0]; cmd {
	case "run-search":
		return &mcp.CallToolParams{Name: "run_search", Arguments: map[string]any{"search_id": args[1]}}, nil
	case "run-provider":
		return &mcp.CallToolParams{Name: "run_provider", Arguments: map[string]any{"provider": args[1]}}, nil
	case "list-runs":
		arguments := map[string]any{"search_id": args[1]}
		if len(args) > 2 {
			limit, err := strconv.Atoi(args[2])
			if err != nil {
				return nil, fmt.Errorf("limit must be a number: %w", err)
			}
			arguments["limit"] = limit
		}
		return &mcp.CallToolParams{Name: "list_runs", Arguments: arguments}, nil
	case "export-runs":
		if len(args) < 3 {
			return nil, fmt.Errorf("export-runs needs a search id and a spreadsheet id")
		}
		arguments := map[string]any{"search_id": args[1], "spreadsheet_id": args[2]}
		if len(args) > 3 {
			arguments["tab"] = args[3]
		}
		return &mcp.CallToolParams{Name: "export_runs", Arguments: arguments}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
	if res.StructuredContent != nil {
		out, err := json.MarshalIndent(res.StructuredContent, "", "  ")
		if err == nil {
			fmt.Println(string(out))
		}
	}
}
