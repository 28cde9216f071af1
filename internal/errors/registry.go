package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Hydration Errors (A001-A019)
	// ============================================

	"A001": {
		Category: CategoryHydration,
		Message:  "Auth state resolution failed",
		Detail:   "The auth state resolver returned an error. The island stays in its pending state and a later trigger will retry.",
	},
	"A002": {
		Category: CategoryHydration,
		Message:  "Island not registered",
		Detail:   "The island ID does not exist in the registry. It may have been destroyed, or the registry may have been closed.",
	},
	"A003": {
		Category: CategoryHydration,
		Message:  "Unknown hydration strategy",
		Detail:   "The hydration strategy must be one of: immediate, lazy, onVisible, onIdle.",
	},

	// ============================================
	// Decode Errors (A020-A039)
	// ============================================

	"A020": {
		Category: CategoryDecode,
		Message:  "Malformed hydration payload",
		Detail:   "The embedded server payload could not be decoded. Hydration treats this as an absent payload, never as fatal.",
	},

	// ============================================
	// Channel Errors (A040-A059)
	// ============================================

	"A040": {
		Category: CategoryChannel,
		Message:  "WebSocket connection failed",
		Detail:   "Unable to establish a WebSocket connection to the sync endpoint.",
	},
	"A041": {
		Category: CategoryChannel,
		Message:  "Channel closed",
		Detail:   "The cross-context channel has been closed. Snapshots can no longer be published or received.",
	},
	"A042": {
		Category: CategoryChannel,
		Message:  "Blob store unavailable",
		Detail:   "The shared blob store backing the fallback channel could not be reached.",
	},

	// ============================================
	// Timeout Errors (A060-A069)
	// ============================================

	"A060": {
		Category: CategoryTimeout,
		Message:  "Timed out waiting for hydration payload",
		Detail:   "No payload appeared within the wait budget. Distinct from a payload that was present and decoded to absence.",
	},

	// ============================================
	// Configuration Errors (A080-A099)
	// ============================================

	"A080": {
		Category: CategoryConfig,
		Message:  "Invalid authsync.json",
		Detail:   "The authsync.json configuration file is malformed.",
	},
	"A081": {
		Category: CategoryConfig,
		Message:  "Unknown channel backend",
		Detail:   "The channel backend must be one of: memory, websocket, blob.",
	},
	"A082": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"A083": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
		Detail:   "The configured listen address could not be parsed.",
	},
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
