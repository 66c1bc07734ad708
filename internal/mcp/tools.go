package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchMemoryTool defines the search_memory MCP tool.
var searchMemoryTool = mcp.NewTool("search_memory",
	mcp.WithDescription("Search stored memories semantically. Returns the most relevant documents with their best matching excerpts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of documents to return (default 10)"),
	),
	mcp.WithString("container_tags",
		mcp.Description("Comma-separated container tags; documents carrying at least one of them are returned"),
	),
	mcp.WithString("org",
		mcp.Description("Organization to search in (default \"default\")"),
	),
)

// getDocumentTool defines the get_document MCP tool.
var getDocumentTool = mcp.NewTool("get_document",
	mcp.WithDescription("Fetch the full content of a stored document by id."),
	mcp.WithString("document_id",
		mcp.Required(),
		mcp.Description("Document id returned by search_memory"),
	),
	mcp.WithString("org",
		mcp.Description("Organization the document belongs to (default \"default\")"),
	),
)
