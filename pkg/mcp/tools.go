package mcp

import "github.com/mark3labs/mcp-go/mcp"

func scanVariablesTool() mcp.Tool {
	return mcp.NewTool("scan_variables",
		mcp.WithDescription("Scan a scope of the design document for variable usage. Returns the used collections with per-mode values, unbound elements, and the scope name."),
		mcp.WithString("scope",
			mcp.Description("Scope to scan"),
			mcp.Enum("page", "selection", "document"),
			mcp.DefaultString("page"),
		),
		mcp.WithString("page",
			mcp.Description("Page id or name to use as the current page (page scope)"),
		),
		mcp.WithString("selection",
			mcp.Description("Comma-separated node ids to use as the selection (selection scope)"),
		),
	)
}

func scanComponentsTool() mcp.Tool {
	return mcp.NewTool("scan_components",
		mcp.WithDescription("Scan a scope for component instance usage, grouped by owning library."),
		mcp.WithString("scope",
			mcp.Description("Scope to scan"),
			mcp.Enum("page", "selection", "document"),
			mcp.DefaultString("page"),
		),
		mcp.WithString("page",
			mcp.Description("Page id or name to use as the current page (page scope)"),
		),
		mcp.WithString("selection",
			mcp.Description("Comma-separated node ids to use as the selection (selection scope)"),
		),
	)
}

func documentInfoTool() mcp.Tool {
	return mcp.NewTool("document_info",
		mcp.WithDescription("Document overview: id, name, pages, and record counts."),
	)
}

func listIgnoredTool() mcp.Tool {
	return mcp.NewTool("list_ignored",
		mcp.WithDescription("List both suppression lists with current node metadata for by-id entries. Deleted nodes are marked, not dropped."),
	)
}

func ignoreElementTool() mcp.Tool {
	return mcp.NewTool("ignore_element",
		mcp.WithDescription("Suppress a node from future unbound-element reports."),
		mcp.WithString("node_id", mcp.Description("Node id to suppress"), mcp.Required()),
	)
}

func unignoreElementTool() mcp.Tool {
	return mcp.NewTool("unignore_element",
		mcp.WithDescription("Remove a node from the by-id suppression list."),
		mcp.WithString("node_id", mcp.Description("Node id to restore"), mcp.Required()),
	)
}

func ignoreValueTool() mcp.Tool {
	return mcp.NewTool("ignore_value",
		mcp.WithDescription("Suppress every unbound element matching a value pattern, e.g. all fills of #FF0000. Text suppression covers both text flag kinds."),
		mcp.WithString("value_type",
			mcp.Description("Kind of value to suppress"),
			mcp.Enum("stroke", "fill", "text-no-style"),
			mcp.Required(),
		),
		mcp.WithString("value",
			mcp.Description("Hex color for stroke/fill suppressions; unused for text"),
		),
	)
}

func unignoreValueTool() mcp.Tool {
	return mcp.NewTool("unignore_value",
		mcp.WithDescription("Remove a by-value suppression."),
		mcp.WithString("value_type",
			mcp.Description("Kind of value suppression to remove"),
			mcp.Enum("stroke", "fill", "text-no-style"),
			mcp.Required(),
		),
		mcp.WithString("value",
			mcp.Description("Hex color for stroke/fill suppressions; unused for text"),
		),
	)
}

func checkEditTool() mcp.Tool {
	return mcp.NewTool("check_edit",
		mcp.WithDescription("Check whether a collection's variables may be edited here. Remote collections from reachable libraries are rejected with a reason."),
		mcp.WithString("collection_id", mcp.Description("Collection id"), mcp.Required()),
	)
}
