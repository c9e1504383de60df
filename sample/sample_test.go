package sample

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/typedprefs"
	"github.com/CreativeUnicorns/typedprefs/codegen"
	"github.com/CreativeUnicorns/typedprefs/resources"
	"github.com/CreativeUnicorns/typedprefs/storage"
)

func newSample(t *testing.T) (*typedprefs.Registry, *P, *resources.Bundle) {
	t.Helper()
	bundle, err := Resources()
	require.NoError(t, err)

	reg, p := New(typedprefs.WithLogger(typedprefs.NewSlogLogger(io.Discard, typedprefs.LogLevelError)))
	require.NoError(t, reg.Init(storage.NewMemoryStorage(), bundle))
	return reg, p, bundle
}

func TestGeneratedHandlesAreCurrent(t *testing.T) {
	entries, err := Screen()
	require.NoError(t, err)
	bundle, err := Resources()
	require.NoError(t, err)

	src, err := codegen.Generate(codegen.Config{Package: "sample"}, entries, bundle.IDs())
	require.NoError(t, err)

	current, err := os.ReadFile("p.go")
	require.NoError(t, err)

	normalize := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	assert.Equal(t, normalize(string(current)), normalize(string(src)), "p.go is stale; run go generate")
}

func TestResourceIDsMatchBundle(t *testing.T) {
	bundle, err := Resources()
	require.NoError(t, err)

	tests := []struct {
		ref  string
		want int
	}{
		{"@bool/use_inputs", ResBoolUseInputs},
		{"@color/primary_color", ResColorPrimaryColor},
		{"@integer/number_of_rows", ResIntegerNumberOfRows},
		{"@string/server_url", ResStringServerUrl},
		{"@array/request_methods", ResArrayRequestMethods},
		{"@array/request_types", ResArrayRequestTypes},
		{"@array/server_names", ResArrayServerNames},
		{"@array/server_urls", ResArrayServerUrls},
	}

	for _, tt := range tests {
		ref, err := resources.ParseRef(tt.ref)
		require.NoError(t, err)
		id, ok := bundle.ID(ref)
		require.True(t, ok, tt.ref)
		assert.Equal(t, tt.want, id, tt.ref)
	}
}

func TestDump(t *testing.T) {
	_, p, _ := newSample(t)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, p))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Server category:\n\tkey: category_server\n\n"))
	for _, block := range []string{
		"Number of columns:\n\tkey: number_of_columns\n\tdefaultValue: 3\n\n",
		"Number of rows:\n\tkey: number_of_rows\n\tdefaultResId: 0x7f030000\n\tdefaultValue: 10\n\n",
		"Primary color:\n\tkey: primary_color\n\tdefaultResId: 0x7f020000\n\tdefaultValue: #FF3F51B5\n\n",
		"Request agent:\n\tkey: request_agent\n\tdefaultValue: psync\n\n",
		"Request types:\n\tkey: request_types\n\tdefaultResId: 0x7f050001\n\tdefaultValue: [GET, POST]\n\n",
		"Server url:\n\tkey: server_url\n\tdefaultResId: 0x7f040001\n\tdefaultValue: https://api.example.com\n\n",
		"Show images:\n\tkey: show_images\n\tdefaultValue: true\n\n",
		"Use inputs:\n\tkey: use_inputs\n\tdefaultResId: 0x7f010000\n\tdefaultValue: true\n\n",
	} {
		assert.Contains(t, out, block)
	}
}

func TestDump_ResolutionFailure(t *testing.T) {
	reg, p := New(typedprefs.WithLogger(typedprefs.NewSlogLogger(io.Discard, typedprefs.LogLevelError)))
	require.NoError(t, reg.Init(storage.NewMemoryStorage(), resources.NewTable()))

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, p))
	assert.Contains(t, buf.String(), "Number of rows:\n\tkey: number_of_rows\n\tdefaultResId: 0x7f030000\n\tdefaultValue: error: ")
	assert.Contains(t, buf.String(), "defaultValue: psync")
}

func TestSampleReadWrite(t *testing.T) {
	_, p, bundle := newSample(t)
	ctx := context.Background()

	url, err := p.ServerUrl.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", url)

	require.NoError(t, p.ServerUrl.Set(ctx, "https://staging.example.com"))
	url, err = p.ServerUrl.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.example.com", url)

	err = p.ServerUrl.Set(ctx, "https://evil.example.com")
	assert.ErrorIs(t, err, typedprefs.ErrValidation)

	err = p.RequestTypes.Set(ctx, []string{"GET", "PATCH"})
	assert.ErrorIs(t, err, typedprefs.ErrValidation)
	require.NoError(t, p.RequestTypes.Set(ctx, []string{"PUT"}))

	labels, err := p.ServerUrl.Descriptor().Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Production", "Staging"}, labels)

	_, err = bundle.SetLocale("fr-FR")
	require.NoError(t, err)

	labels, err = p.ServerUrl.Descriptor().Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Production", "Préproduction"}, labels)

	def, err := p.ServerUrl.DefaultValue()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.fr", def)

	require.NoError(t, p.ServerUrl.Clear(ctx))
	url, err = p.ServerUrl.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.fr", url)
}
