// Package resources serves the project's framework documentation as MCP
// resources. The documents are embedded in the binary so the server has
// no runtime dependency on a docs directory.
//
// Resources use URI-based addressing (framework://...) following MCP
// conventions.
package resources

import (
	"context"
	"embed"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

//go:embed docs/*.md
var docsFS embed.FS

// frameworkDocs maps each resource to its embedded document.
var frameworkDocs = []struct {
	slug        string
	title       string
	description string
}{
	{
		slug:        "salesforce-triggers",
		title:       "Salesforce Trigger Guidelines",
		description: "Trigger development guidelines for this project: one trigger per object, handler pattern, bulkification rules.",
	},
	{
		slug:        "salesforce-logging",
		title:       "Salesforce Logging Best Practices",
		description: "Logging conventions for this project: the Logger class, levels, and what must never be logged.",
	},
	{
		slug:        "salesforce-cache-manager",
		title:       "Salesforce Cache Manager Framework",
		description: "Platform Cache wrapper documentation: key discipline, TTLs, and invalidation rules.",
	},
}

// Handler serves the embedded framework documentation.
type Handler struct{}

// NewHandler creates a resource Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Definitions returns one MCP resource definition per framework document.
func (h *Handler) Definitions() []mcp.Resource {
	defs := make([]mcp.Resource, 0, len(frameworkDocs))
	for _, doc := range frameworkDocs {
		defs = append(defs, mcp.NewResource(
			"framework://"+doc.slug,
			doc.title,
			mcp.WithResourceDescription(doc.description),
			mcp.WithMIMEType("text/markdown"),
		))
	}
	return defs
}

// Handle serves a framework:// resource read.
func (h *Handler) Handle(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	slug, ok := slugFromURI(uri)
	if !ok {
		return nil, fmt.Errorf("unknown resource URI: %s", uri)
	}

	data, err := docsFS.ReadFile("docs/" + slug + ".md")
	if err != nil {
		return nil, fmt.Errorf("reading framework documentation for %s: %w", slug, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     string(data),
		},
	}, nil
}

// slugFromURI validates a framework:// URI against the known documents.
func slugFromURI(uri string) (string, bool) {
	const prefix = "framework://"
	if len(uri) <= len(prefix) || uri[:len(prefix)] != prefix {
		return "", false
	}
	slug := uri[len(prefix):]
	for _, doc := range frameworkDocs {
		if doc.slug == slug {
			return slug, true
		}
	}
	return "", false
}
