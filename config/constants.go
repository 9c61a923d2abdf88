package constants

// Identity
const (
	APP_NAME        = "pimonitor"
	APP_DESCRIPTION = "SuperVisor Driver Service"
	APP_VERSION     = "1.0.1"
)

// Server defaults
const (
	DEFAULT_PORT       = 4040
	DEFAULT_STATIC_DIR = "frontend/dist"
	DEFAULT_RATE_LIMIT = 50.0 // requests per second
	DEFAULT_RATE_BURST = 100

	DEFAULT_READ_TIMEOUT_SECONDS     = 10
	DEFAULT_WRITE_TIMEOUT_SECONDS    = 30
	DEFAULT_SHUTDOWN_TIMEOUT_SECONDS = 10
)

// Bind addresses per IP version. An empty host listens on every interface.
const (
	IP_VERSION_ANY    = ""
	IP_VERSION_4      = "4"
	IP_VERSION_6      = "6"
	BIND_ADDRESS_ANY  = ""
	BIND_ADDRESS_IPV4 = "0.0.0.0"
	BIND_ADDRESS_IPV6 = "::"
)

// Access gate
const (
	PASSCODE_ALPHABET = "0123456789ABCDEF"
	PASSCODE_LENGTH   = 16
)

// Wire compatibility values consumed by the bundled frontend
const (
	RESPONSE_KEY      = "retnmesg"
	RESPONSE_DENY     = "deny"
	RESPONSE_FAIL     = "fail"
	QUERY_PASSCODE    = "passcode"
	QUERY_PROCESS_ID  = "prociden"
	CONTENT_TYPE_JSON = "application/json"
	CONTENT_TYPE_CBOR = "application/cbor"
)

// Snapshot collection
const (
	DEFAULT_CATEGORY_TIMEOUT_MS    = 3000
	DEFAULT_CPU_SAMPLE_INTERVAL_MS = 200
)

// OTLP export (disabled unless an endpoint is configured)
const (
	OTLP_PATH                     = "/v1/metrics"
	DEFAULT_OTLP_INTERVAL_SECONDS = 30
)

// Prometheus namespace for every exported series
const METRICS_NAMESPACE = "pimonitor"

// File paths
const (
	CONFIG_DIR_NAME = "/.pimonitor"
	LOG_FILE        = ""
	PID_FILE_PREFIX = "pimonitor"
)
