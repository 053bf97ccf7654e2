package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
	Status   int
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
		Detail:   "The configuration file exists but could not be read.",
		Status:   500,
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config JSON",
		Detail:   "The configuration file is not valid JSON or has fields of the wrong type.",
		Status:   500,
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The server port must be between 0 and 65535.",
		Status:   500,
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
		Detail:   "Log level must be one of debug, info, warn or error and log format one of text or json.",
		Status:   500,
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Timeouts and intervals must be positive durations such as \"5s\" or \"250ms\".",
		Status:   500,
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid buffer size",
		Detail:   "The per-client send buffer must hold at least one message.",
		Status:   500,
	},
	"E107": {
		Category: CategoryConfig,
		Message:  "Invalid limit",
		Detail:   "Client and rate limits must be zero (unlimited) or positive.",
		Status:   500,
	},

	// ============================================
	// Feed Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryFeed,
		Message:  "Index out of range",
		Detail:   "The requested position does not exist in the collection.",
		Status:   404,
	},
	"E202": {
		Category: CategoryValidation,
		Message:  "Malformed request",
		Detail:   "The request body could not be decoded or is missing required fields.",
		Status:   400,
	},
	"E203": {
		Category: CategoryFeed,
		Message:  "Feed stopped",
		Detail:   "The hub owning the collection is no longer running.",
		Status:   503,
	},
	"E204": {
		Category: CategoryFeed,
		Message:  "WebSocket upgrade failed",
		Detail:   "The connection could not be upgraded to a WebSocket.",
		Status:   400,
	},
	"E205": {
		Category: CategoryFeed,
		Message:  "Too many clients",
		Detail:   "The event stream has reached its client limit.",
		Status:   503,
	},
	"E206": {
		Category: CategoryFeed,
		Message:  "Too many requests",
		Detail:   "Mutations are arriving faster than the configured rate.",
		Status:   429,
	},
}

// Codes returns all registered error codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
