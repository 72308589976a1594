package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Render Errors (E001-E009)
	// ============================================

	"E001": {
		Category:   CategoryRender,
		Message:    "Invalid virtual node",
		Suggestion: "Build nodes with vdom.H, vdom.Text, vdom.Slot or vdom.Fragment instead of literal structs",
		DocURL:     "https://graft.dev/docs/errors/E001",
	},
	"E002": {
		Category:   CategoryDistribution,
		Message:    "Conflicting insertion point name",
		Suggestion: "Insertion point names must be strings; use vdom.Name(\"start\")",
		DocURL:     "https://graft.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRender,
		Message:  "Render requested while a cycle for the same host is in flight",
		DocURL:   "https://graft.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRender,
		Message:  "Render requested for a detached host",
		DocURL:   "https://graft.dev/docs/errors/E004",
	},
	"E005": {
		Category:   CategoryRender,
		Message:    "Component render panicked",
		Suggestion: "Render functions must not panic; return nil to render nothing",
		DocURL:     "https://graft.dev/docs/errors/E005",
	},

	// ============================================
	// Patch Errors (E010-E019)
	// ============================================

	"E010": {
		Category: CategoryPatch,
		Message:  "Patch target has no realized node",
		DocURL:   "https://graft.dev/docs/errors/E010",
	},
	"E011": {
		Category:   CategoryPatch,
		Message:    "Duplicate key in child list",
		Suggestion: "Keys must be unique among siblings",
		DocURL:     "https://graft.dev/docs/errors/E011",
	},

	// ============================================
	// Component Registry Errors (E020-E029)
	// ============================================

	"E020": {
		Category:   CategoryRender,
		Message:    "Invalid component registration",
		Suggestion: "Component tags must be lowercase and contain a hyphen, and must be registered before Freeze",
		DocURL:     "https://graft.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryRender,
		Message:  "Component template could not be parsed",
		DocURL:   "https://graft.dev/docs/errors/E021",
	},

	// ============================================
	// Hydration Errors (E040-E059)
	// ============================================

	"E040": {
		Category:   CategoryHydration,
		Message:    "No registered components found",
		Suggestion: "Register at least one component whose tag appears in the document",
		DocURL:     "https://graft.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryHydration,
		Message:  "Hydration marker already used",
		DocURL:   "https://graft.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategoryHydration,
		Message:  "Component failed to render during hydration",
		DocURL:   "https://graft.dev/docs/errors/E042",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Frame truncated",
		DocURL:   "https://graft.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Frame too large",
		DocURL:   "https://graft.dev/docs/errors/E061",
	},

	// ============================================
	// Storage Errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryStorage,
		Message:  "Page not found",
		DocURL:   "https://graft.dev/docs/errors/E080",
	},
	"E081": {
		Category: CategoryStorage,
		Message:  "Storage backend failure",
		DocURL:   "https://graft.dev/docs/errors/E081",
	},

	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Invalid graft.json",
		Suggestion: "Check that graft.json is valid JSON",
		DocURL:     "https://graft.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://graft.dev/docs/errors/E121",
	},
	"E141": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Suggestion: "Create graft.json in the project root",
		DocURL:     "https://graft.dev/docs/errors/E141",
	},

	// ============================================
	// CLI Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
		DocURL:   "https://graft.dev/docs/errors/E160",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
