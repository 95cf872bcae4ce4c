package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"public id", "videos/abc.mp4", "videos/abc.mp4", false},
		{"url", "http://localhost:9000/vidtube/avatars/me.png", "avatars/me.png", false},
		{"url with query", "https://cdn.example.com/vidtube/thumbnails/t.jpg?v=2", "thumbnails/t.jpg", false},
		{"unknown folder", "http://localhost:9000/vidtube/other/x.png", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetRef(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunChecks(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	var out bytes.Buffer
	err := runChecks(context.Background(), &out, []check{
		{name: "postgres", required: true, run: ok},
		{name: "redis", run: down},
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ postgres")
	assert.Contains(t, out.String(), "! redis (optional): connection refused")

	out.Reset()
	err = runChecks(context.Background(), &out, []check{
		{name: "postgres", required: true, run: down},
		{name: "media store", required: true, run: ok},
	})
	assert.EqualError(t, err, "1 required dependencies unavailable")
	assert.Contains(t, out.String(), "✗ postgres: connection refused")
}

func TestMigratePrintsSchema(t *testing.T) {
	var out bytes.Buffer
	app := migrateCommand()
	app.Writer = &out

	require.NoError(t, app.Run(context.Background(), []string{"migrate", "--print"}))
	assert.Contains(t, out.String(), "CREATE TABLE")
}
