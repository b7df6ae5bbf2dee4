package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/founder-resolve/internal/config"
	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resolve"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: filepath.Join(t.TempDir(), "founders.db")},
		Match: config.MatchConfig{NameThreshold: 85},
		Batch: config.BatchConfig{ChunkSize: 2, PrimaryLink: true, DefaultRole: "Founder", StoreRetries: 1},
	}
}

func TestLoadDecisions(t *testing.T) {
	path := writeTemp(t, "decisions.yaml", "0: merge\n2: SKIP\n7: new\n")
	got, err := loadDecisions(path, 3)
	require.NoError(t, err)
	assert.Equal(t, map[int]resolve.Decision{0: resolve.DecisionMerge, 2: resolve.DecisionSkip}, got)
}

func TestLoadDecisions_Invalid(t *testing.T) {
	path := writeTemp(t, "decisions.yaml", "0: maybe\n")
	_, err := loadDecisions(path, 3)
	require.Error(t, err)
}

func TestLoadDecisions_None(t *testing.T) {
	got, err := loadDecisions("", 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPrintOutcome(t *testing.T) {
	out := &importer.Outcome{
		BatchID: "b-1", Total: 3, Created: 2, Merged: 1,
		Errors: []importer.RowError{{Row: 1, Name: "", Message: "validation: name is required"}},
	}

	var buf bytes.Buffer
	require.NoError(t, printOutcome(&buf, out, false))
	assert.Contains(t, buf.String(), "b-1")
	assert.Contains(t, buf.String(), "validation: name is required")

	buf.Reset()
	require.NoError(t, printOutcome(&buf, out, true))
	var decoded importer.Outcome
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Created)
}

func TestImporterOptions(t *testing.T) {
	c := sqliteConfig(t)
	c.Batch.PrimaryLink = false
	opts := importerOptions(c)
	assert.Equal(t, 2, opts.ChunkSize)
	assert.Equal(t, 85, opts.NameThreshold)
	assert.False(t, opts.PrimaryLink)
	assert.Equal(t, 2, opts.Retry.MaxAttempts)
}

func TestOpenStores_SQLiteImportFlow(t *testing.T) {
	ctx := context.Background()
	c := sqliteConfig(t)

	env, err := openStores(ctx, c, true)
	require.NoError(t, err)
	defer env.Close()
	require.NoError(t, env.Migrate(ctx))

	csvPath := writeTemp(t, "founders.csv", "Name,Email\nAmy Lee,amy@x.com\n,ghost@x.com\nBob Chen,\n")
	records, err := loadRecords(csvPath, "")
	require.NoError(t, err)
	require.Len(t, records, 3)

	im := importer.New(env.Founders, env.Companies, importerOptions(c))
	out := im.Import(ctx, records, nil)
	assert.Equal(t, 2, out.Created)
	assert.Len(t, out.Errors, 1)

	again := im.Import(ctx, records, nil)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Merged)

	var buf bytes.Buffer
	require.NoError(t, printPreview(&buf, im.Preview(ctx, records), false, false))
	assert.Contains(t, buf.String(), "exact_email")
}

func TestOpenStores_ExclusiveLock(t *testing.T) {
	ctx := context.Background()
	c := sqliteConfig(t)

	first, err := openStores(ctx, c, true)
	require.NoError(t, err)

	_, err = openStores(ctx, c, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another import is already running")

	// Readers do not take the lock.
	reader, err := openStores(ctx, c, false)
	require.NoError(t, err)
	reader.Close()

	first.Close()
	second, err := openStores(ctx, c, true)
	require.NoError(t, err)
	second.Close()
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := openStores(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mysql"}}, false)
	require.Error(t, err)
}
