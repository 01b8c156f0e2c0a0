package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# LogDetect configuration
version: "1.0"

# Detection service location
endpoint:
  # Explicit base URL; when set, origin_host/service_host/port are ignored
  base_url: ""
  # Host this client runs on; loopback hosts talk to localhost
  origin_host: "localhost"
  # Service hostname used when origin_host is not loopback
  service_host: "backend"
  port: 8000
  # Request timeout; 0 leaves it to the transport
  timeout: 0s

upload:
  # Largest file accepted for submission, in bytes (0 disables the check)
  max_file_size: 52428800

decode:
  # Reject malformed responses instead of showing them as received
  strict: false

output:
  default_format: "text"  # text|json|markdown|csv
  color_mode: "auto"      # auto|always|never
  verbose: false

watch:
  # Quiet period after a write before the file is resubmitted
  debounce: 500ms

storage:
  history_enabled: true
  history_path: "~/.cache/logdetect/history.db"

server:
  addr: "127.0.0.1:8080"
  metrics_path: "/metrics"
`
}

// MinimalSampleConfig returns the smallest useful configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
endpoint:
  origin_host: "localhost"
  port: 8000
output:
  default_format: "text"
`
}
