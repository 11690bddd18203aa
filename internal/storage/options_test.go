package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveConcurrency(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"missing", nil, DefaultConcurrency},
		{"non numeric", "lots", DefaultConcurrency},
		{"empty string", "", DefaultConcurrency},
		{"zero", 0, DefaultConcurrency},
		{"negative", -4, DefaultConcurrency},
		{"int", 12, 12},
		{"int64", int64(7), 7},
		{"float", 8.9, 8},
		{"numeric string", " 32 ", 32},
		{"fractional string", "5.5", 5},
		{"bool", true, DefaultConcurrency},
		{"int32", int32(8), 8},
		{"uint", uint(8), 8},
		{"uint16", uint16(3), 3},
		{"float32", float32(6.5), 6},
		{"json number", json.Number("8"), 8},
		{"fractional json number", json.Number("4.2"), 4},
		{"bad json number", json.Number("x"), DefaultConcurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveConcurrency(tc.in))
		})
	}
}

func TestOptionsFromMap(t *testing.T) {
	opts := OptionsFromMap(map[string]any{
		"account":       "  acct ",
		"accountKey":    "k\n",
		"containerName": "c",
		"defaultPath":   "d",
		"maxConcurent":  "3",
		"ignored":       42,
	})
	assert.Equal(t, BackendAzure, opts.Backend)
	assert.Equal(t, "acct", opts.Account)
	assert.Equal(t, "k", opts.AccountKey)
	assert.Equal(t, "c", opts.ContainerName)
	assert.Equal(t, "d", opts.DefaultPath)
	assert.Equal(t, 3, opts.MaxConcurrent)
	assert.False(t, opts.Dual())
	assert.Equal(t, "https://acct.blob.core.windows.net", opts.serviceURL())
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	assert.Equal(t, DefaultConcurrency, opts.concurrency())
	assert.Equal(t, time.Hour, opts.uploadTimeout())

	opts.ServiceBaseURL = "http://127.0.0.1:10000/devstoreaccount1/"
	assert.Equal(t, "http://127.0.0.1:10000/devstoreaccount1", opts.serviceURL())

	s3 := Options{Backend: "S3", Endpoint: "minio:9000", UseSSL: true}
	assert.Equal(t, "https://minio:9000", s3.serviceURL())
}

func TestFieldsFollowLayout(t *testing.T) {
	keys := func(fields []Field) []string {
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = f.Key
		}
		return out
	}
	assert.Contains(t, keys(Fields(false)), "containerName")
	assert.NotContains(t, keys(Fields(false)), "cdnRoot")
	assert.Contains(t, keys(Fields(true)), "cdnRoot")
	assert.Contains(t, keys(Fields(true)), "maxConcurrent")
}
