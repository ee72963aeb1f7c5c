package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewGraphMCPServer creates an MCP server with all graph tools registered.
func NewGraphMCPServer(svc *GraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codelens-graph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_codebase",
		Description: "Scan a repository and build the code graph. Walks the file tree, parses source files with tree-sitter, and assembles the system/package/file/symbol hierarchy with dependency and call relations.",
	}, svc.ScanCodebase)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Return node, relation, lens, domain, and flow counts for the current graph.",
	}, svc.GraphStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_diagram",
		Description: "Render the current graph as a Mermaid diagram through a lens. Nesting follows containment; an optional focus node scopes the view to its ancestors and descendants.",
	}, svc.RenderDiagram)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_domain_view",
		Description: "Render the business-concept tree and its relations as a Mermaid diagram, independent of the technical hierarchy.",
	}, svc.RenderDomainView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_anomalies",
		Description: "Run structural checks over the current graph: orphan nodes, broken relation endpoints, dependency cycles, high coupling, and god nodes. Findings are advisory and never modify the graph.",
	}, svc.DetectAnomalies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "flow_summary",
		Description: "Build the compact structural digest (module/file/symbol hierarchy, import and call edges, ranked entry points) handed to an external flow generator.",
	}, svc.FlowSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_flows",
		Description: "Validate externally generated flow candidates against the graph and merge the ones that check out. A batch where too few candidates validate is rejected whole.",
	}, svc.SubmitFlows)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_node",
		Description: "Add a node to the containment hierarchy under a given parent (default: the root).",
	}, svc.AddNode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_relation",
		Description: "Add a typed, optionally labeled relation between two nodes.",
	}, svc.AddRelation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_node",
		Description: "Remove a node together with its descendants and every relation touching them.",
	}, svc.RemoveNode)

	return server
}

// RunMCPServer starts an HTTP server exposing the graph MCP tools.
func RunMCPServer(ctx context.Context, svc *GraphService, addr string) error {
	server := NewGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
