package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Supported backends.
const (
	BackendAzure  = "azure"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Options configures a provider. It is read once by New and never mutated.
type Options struct {
	Backend string

	Account        string
	AccountKey     string
	ServiceBaseURL string

	// Single-container layout.
	ContainerName string
	DefaultPath   string

	// Dual-container layout. Setting either container name selects it.
	ContainerNamePublic  string
	ContainerNamePrivate string
	DefaultPathPublic    string
	DefaultPathPrivate   string
	CDNRoot              string

	MaxConcurrent int
	UploadTimeout time.Duration

	// S3-compatible backend only.
	Endpoint string
	UseSSL   bool
}

// Dual reports whether the options describe the dual-container layout.
func (o Options) Dual() bool {
	return o.ContainerNamePublic != "" || o.ContainerNamePrivate != ""
}

// serviceURL returns the configured base URL or the backend's convention.
func (o Options) serviceURL() string {
	if o.ServiceBaseURL != "" {
		return strings.TrimRight(o.ServiceBaseURL, "/")
	}
	switch backendName(o) {
	case BackendS3:
		scheme := "http"
		if o.UseSSL {
			scheme = "https"
		}
		return scheme + "://" + o.Endpoint
	case BackendMemory:
		return "memory://" + pathOr(o.Account, "local")
	default:
		return fmt.Sprintf("https://%s.blob.core.windows.net", o.Account)
	}
}

func (o Options) concurrency() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return DefaultConcurrency
}

func (o Options) uploadTimeout() time.Duration {
	if o.UploadTimeout > 0 {
		return o.UploadTimeout
	}
	return UploadTimeout
}

// OptionsFromMap reads the option names used by the host pipeline. String
// values are trimmed; unknown keys are ignored.
func OptionsFromMap(raw map[string]any) Options {
	str := func(key string) string {
		if s, ok := raw[key].(string); ok {
			return strings.TrimSpace(s)
		}
		return ""
	}
	concurrent, ok := raw["maxConcurrent"]
	if !ok {
		concurrent = raw["maxConcurent"]
	}
	return Options{
		Backend:              pathOr(strings.ToLower(str("backend")), BackendAzure),
		Account:              str("account"),
		AccountKey:           str("accountKey"),
		ServiceBaseURL:       str("serviceBaseURL"),
		ContainerName:        str("containerName"),
		DefaultPath:          str("defaultPath"),
		ContainerNamePublic:  str("containerNamePublic"),
		ContainerNamePrivate: str("containerNamePrivate"),
		DefaultPathPublic:    str("defaultPathPublic"),
		DefaultPathPrivate:   str("defaultPathPrivate"),
		CDNRoot:              str("cdnRoot"),
		MaxConcurrent:        ResolveConcurrency(concurrent),
		Endpoint:             str("endpoint"),
	}
}

// ResolveConcurrency turns a loosely typed option into a transfer
// concurrency. Missing, non-numeric or non-positive values fall back to
// DefaultConcurrency; fractional numbers are truncated.
func ResolveConcurrency(v any) int {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int8:
		n = int(t)
	case int16:
		n = int(t)
	case int32:
		n = int(t)
	case int64:
		n = clampInt(float64(t))
	case uint:
		n = clampInt(float64(t))
	case uint8:
		n = int(t)
	case uint16:
		n = int(t)
	case uint32:
		n = clampInt(float64(t))
	case uint64:
		n = clampInt(float64(t))
	case float32:
		n = clampInt(float64(t))
	case float64:
		n = clampInt(t)
	case json.Number:
		n = parseConcurrency(t.String())
	case string:
		n = parseConcurrency(t)
	}
	if n <= 0 {
		return DefaultConcurrency
	}
	return n
}

func parseConcurrency(s string) int {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return clampInt(f)
	}
	return 0
}

func clampInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(f)
}

// Field describes one configuration option for the host's settings form.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Fields returns the option schema for the chosen layout.
func Fields(dual bool) []Field {
	fields := []Field{
		{Key: "account", Label: "Account name", Type: "text"},
		{Key: "accountKey", Label: "Secret Access Key", Type: "text"},
		{Key: "serviceBaseURL", Label: "Base service URL to be used, optional. Defaults to https://${account}.blob.core.windows.net", Type: "text"},
	}
	if dual {
		fields = append(fields,
			Field{Key: "containerNamePublic", Label: "Public container name", Type: "text"},
			Field{Key: "containerNamePrivate", Label: "Private container name", Type: "text"},
			Field{Key: "defaultPathPublic", Label: "The public path to use when there is none being specified", Type: "text"},
			Field{Key: "defaultPathPrivate", Label: "The private path to use when there is none being specified", Type: "text"},
			Field{Key: "cdnRoot", Label: "CDN root replacing the public container address in public URLs", Type: "text"},
		)
	} else {
		fields = append(fields,
			Field{Key: "containerName", Label: "Container name", Type: "text"},
			Field{Key: "defaultPath", Label: "The path to use when there is none being specified", Type: "text"},
		)
	}
	return append(fields, Field{Key: "maxConcurrent", Label: "The maximum concurrent uploads to Azure", Type: "number"})
}
