package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentRecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewPrometheusObserver("test_storage", reg)
	require.NoError(t, err)

	s, mem := newSingle(t, scenarioOptions())
	p := Instrument(s, obs)

	f := &File{Hash: "a", Ext: ".txt", Buffer: []byte("12345")}
	require.NoError(t, p.Upload(context.Background(), f))
	require.NoError(t, p.Delete(context.Background(), f))
	assert.True(t, IsNotFound(p.Delete(context.Background(), f)))

	mem.PutHook = func(context.Context, Blob) error { return errors.New("network down") }
	require.Error(t, p.Upload(context.Background(), &File{Hash: "b", Ext: ".txt", Buffer: []byte("xx")}))

	assert.Equal(t, 5.0, testutil.ToFloat64(obs.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.failures.WithLabelValues("delete", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(obs.failures.WithLabelValues("upload", "transfer")))
	assert.Equal(t, 2, testutil.CollectAndCount(obs.duration))
}

func TestNewPrometheusObserverReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("", reg)
	require.NoError(t, err)

	first.RecordUpload(0, 3, nil)
	second.RecordUpload(0, 4, nil)
	assert.Equal(t, 7.0, testutil.ToFloat64(second.uploadBytes))
}

func TestInstrumentWithoutObserver(t *testing.T) {
	s, _ := newSingle(t, scenarioOptions())
	p := Instrument(s, nil)
	require.NoError(t, p.Upload(context.Background(), &File{Hash: "a", Ext: ".txt"}))
}
