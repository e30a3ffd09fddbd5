package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://loom.vango.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Lifecycle Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryLifecycle,
		Message:  "Cleanup registered outside lifecycle scope",
		Detail:   "UseCleanup was called while no lifecycle scope was active. Wrap the setup code in WithLifecycle or run it inside a component initializer.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryLifecycle,
		Message:  "Reactive read outside lifecycle scope",
		Detail:   "A derivation, binding or rendering combinator was created while no lifecycle scope was active, so nothing would ever unsubscribe it.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryLifecycle,
		Message:  "Context read outside provider",
		Detail:   "Context.Get was called outside the dynamic extent of a matching Provide call.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryLifecycle,
		Message:  "Scope stack imbalance",
		Detail:   "A scope was popped that is not the innermost active scope.",
		DocURL:   docBase + "E104",
	},
	"E105": {
		Category: CategoryRuntime,
		Message:  "Runtime closed",
		Detail:   "The runtime event loop has been closed and no longer accepts work.",
		DocURL:   docBase + "E105",
	},

	// ============================================
	// Template Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryTemplate,
		Message:  "Template syntax error",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryTemplate,
		Message:  "Invalid hole value",
		Detail:   "The value interpolated into this hole cannot be used at its position.",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryTemplate,
		Message:  "Unbalanced markup",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryTemplate,
		Message:  "Hole count mismatch",
		DocURL:   docBase + "E204",
	},

	// ============================================
	// Render Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryRender,
		Message:  "Duplicate key in list snapshot",
		Detail:   "Keys passed to Each must be unique within a single snapshot.",
		DocURL:   docBase + "E301",
	},

	// ============================================
	// Component Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryComponent,
		Message:  "Invalid component name",
		Detail:   "Component names must contain at least one letter or digit.",
		DocURL:   docBase + "E401",
	},
	"E402": {
		Category: CategoryComponent,
		Message:  "Shadow root already attached",
		DocURL:   docBase + "E402",
	},

	// ============================================
	// Config Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		DocURL:   docBase + "E501",
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
