package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dualOptions() Options {
	return Options{
		Account:              "acct",
		AccountKey:           "k",
		ContainerNamePublic:  "pub",
		ContainerNamePrivate: "priv",
		DefaultPathPublic:    "public-files",
		DefaultPathPrivate:   "private-files",
		CDNRoot:              "https://cdn.example.com",
	}
}

func newDual(t *testing.T, opts Options) (*Dual, *MemoryTransport) {
	t.Helper()
	mem := NewMemoryTransport()
	d, err := NewDual(mem, opts, quietLogger())
	require.NoError(t, err)
	return d, mem
}

func TestDualPublicUploadScenario(t *testing.T) {
	d, mem := newDual(t, dualOptions())
	f := &File{Hash: "abc", Ext: ".png", Path: "uploads", Buffer: []byte("p"), Mime: "image/png"}

	require.NoError(t, d.Upload(context.Background(), f))

	assert.Equal(t, "https://acct.blob.core.windows.net/pub/uploads/abc.png", f.BucketURL)
	assert.True(t, strings.HasPrefix(f.BucketURL, d.Container(false).BaseAddress+"/"))
	assert.Equal(t, "https://cdn.example.com/uploads/abc.png", f.URL)
	assert.Equal(t, strings.Replace(f.BucketURL, d.Container(false).BaseAddress, "https://cdn.example.com", 1), f.URL)
	assert.Empty(t, f.URLAzure)

	_, ok := mem.Get(f.BucketURL)
	assert.True(t, ok)
}

func TestDualPrivateUpload(t *testing.T) {
	d, _ := newDual(t, dualOptions())
	f := &File{Hash: "abc", Ext: ".pdf", Private: true}

	require.NoError(t, d.Upload(context.Background(), f))

	assert.Equal(t, "https://acct.blob.core.windows.net/priv/private-files/abc.pdf", f.URL)
	assert.Empty(t, f.BucketURL)
	assert.NotContains(t, f.URL, "usersprivate")
}

func TestDualDefaultPathPerVisibility(t *testing.T) {
	d, _ := newDual(t, dualOptions())
	pub := &File{Hash: "a", Ext: ".jpg"}
	priv := &File{Hash: "b", Ext: ".jpg", Private: true}
	require.NoError(t, d.Upload(context.Background(), pub))
	require.NoError(t, d.Upload(context.Background(), priv))

	assert.Equal(t, "https://cdn.example.com/public-files/a.jpg", pub.URL)
	assert.Equal(t, "https://acct.blob.core.windows.net/priv/private-files/b.jpg", priv.URL)
}

func TestDualWithoutCDNRoot(t *testing.T) {
	opts := dualOptions()
	opts.CDNRoot = ""
	d, _ := newDual(t, opts)
	f := &File{Hash: "a", Ext: ".jpg"}
	require.NoError(t, d.Upload(context.Background(), f))
	assert.Equal(t, f.BucketURL, f.URL)
}

func TestDualRoundTrip(t *testing.T) {
	d, mem := newDual(t, dualOptions())
	for _, private := range []bool{false, true} {
		f := &File{Hash: "rt", Ext: ".bin", Buffer: []byte{1, 2}, Private: private}
		require.NoError(t, d.Upload(context.Background(), f))
		uploaded := d.Resolve(f)

		require.NoError(t, d.Delete(context.Background(), f))
		removed := mem.Removed()
		assert.Equal(t, uploaded, removed[len(removed)-1])
	}
	assert.Zero(t, mem.Len())
}

func TestDualDeleteFallsBackToURL(t *testing.T) {
	d, mem := newDual(t, dualOptions())
	f := &File{Hash: "x", Ext: ".png"}
	require.NoError(t, d.Upload(context.Background(), f))

	// A record carrying only the raw address.
	stored := &File{URL: f.BucketURL}
	require.NoError(t, d.Delete(context.Background(), stored))
	assert.Zero(t, mem.Len())
}

func TestDualDeleteMapsCDNURLBack(t *testing.T) {
	d, mem := newDual(t, dualOptions())
	f := &File{Hash: "x", Ext: ".png"}
	require.NoError(t, d.Upload(context.Background(), f))
	require.True(t, strings.HasPrefix(f.URL, "https://cdn.example.com/"))
	assert.Equal(t, f.BucketURL, d.OriginURL(f.URL))

	require.NoError(t, d.Delete(context.Background(), &File{URL: f.URL}))
	assert.Zero(t, mem.Len())
	assert.Equal(t, "pub", mem.Removed()[0].Container)
}

func TestDualDeleteForeignCDNURLIsNotFound(t *testing.T) {
	d, _ := newDual(t, dualOptions())
	err := d.Delete(context.Background(), &File{URL: "https://cdn.other.com/public-files/x.png"})
	assert.True(t, IsNotFound(err))
}

func TestDualUploadRejectsDotSegments(t *testing.T) {
	d, mem := newDual(t, dualOptions())
	for _, f := range []*File{
		{Hash: "x", Ext: ".png", Path: "../priv"},
		{Hash: "x", Ext: ".png", Path: "a/../../priv", Private: true},
	} {
		err := d.Upload(context.Background(), f)
		assert.ErrorIs(t, err, ErrInvalidPath, f.Path)
		assert.Equal(t, "invalid_path", Kind(err))
		assert.Empty(t, f.URL)
		assert.Empty(t, f.BucketURL)
	}
	assert.Zero(t, mem.Len())
}

func TestDualVisibilityIsNotInferredFromURL(t *testing.T) {
	opts := dualOptions()
	d, mem := newDual(t, opts)
	// The public path spells out the private container address.
	f := &File{Hash: "tricky", Ext: ".png", Path: "mirror/acct.blob.core.windows.net/priv"}
	require.NoError(t, d.Upload(context.Background(), f))
	require.Contains(t, f.BucketURL, "/priv/")

	require.NoError(t, d.Delete(context.Background(), f))
	assert.Zero(t, mem.Len())
	assert.Equal(t, "pub", mem.Removed()[0].Container)
}

func TestNewDualRequiresBothContainers(t *testing.T) {
	opts := dualOptions()
	opts.ContainerNamePrivate = ""
	_, err := NewDual(NewMemoryTransport(), opts, nil)
	assert.True(t, IsConfiguration(err))
}
