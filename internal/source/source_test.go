// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/step"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      []byte
		filename  string
		wantParts int
		wantErr   error
	}{
		{"json by extension", readTestdata(t, "spider.json"), "a.json", 2, nil},
		{"yaml by extension", readTestdata(t, "spider.yaml"), "a.yaml", 3, nil},
		{"yml extension", readTestdata(t, "spider.yaml"), "a.YML", 3, nil},
		{"json sniffed", readTestdata(t, "spider.json"), "dump", 2, nil},
		{"yaml sniffed", readTestdata(t, "spider.yaml"), "dump.txt", 3, nil},
		{"empty unknown", []byte("  \n"), "dump", 0, ErrUnsupportedFormat},
		{"xml", []byte("<parts/>"), "dump.xml", 0, ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := Decode(tt.data, tt.filename)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.Parts, tt.wantParts)
			require.NotNil(t, f.Header)
			assert.Equal(t, tt.filename, f.Header.FilePath)
		})
	}
}

func TestDecode_Fields(t *testing.T) {
	t.Parallel()

	f, err := Decode(readTestdata(t, "spider.json"), "spider.json")
	require.NoError(t, err)

	assert.Equal(t, "spider.stp", f.Header.Name)
	assert.Equal(t, "SolidWorks 2023", f.Header.OriginatingSystem)
	assert.Equal(t, step.Part{ID: 2, Type: "PD", Name: "Bolt", RepresentationType: "Shape_Representation"}, f.Parts[1])
	assert.Equal(t, step.Relation{Label: "Bolt:1", ParentID: 1, ChildID: 2, RawID: 211, Type: "NAUO"}, f.Relations[0])
}

func TestDecode_MissingHeader(t *testing.T) {
	t.Parallel()

	f, err := Decode([]byte(`{"parts": [], "relations": []}`), "x.json")
	require.NoError(t, err)
	require.NotNil(t, f.Header)
	assert.Equal(t, "x.json", f.Header.FilePath)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"parts": [`), "x.json")
	assert.ErrorContains(t, err, "failed to decode x.json as json")

	_, err = Decode([]byte("parts: [\n"), "x.yaml")
	assert.ErrorContains(t, err, "failed to decode x.yaml as yaml")
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	src, err := NewSource(ctx, "testdata/spider.json")
	require.NoError(t, err)
	assert.IsType(t, &Local{}, src)
	assert.Equal(t, "testdata/spider.json", src.String())

	src, err = NewSource(ctx, "s3://models/assy/spider.json?versionId=v7")
	require.NoError(t, err)
	s, ok := src.(*S3)
	require.True(t, ok)
	assert.Equal(t, "models", s.Bucket)
	assert.Equal(t, "assy/spider.json", s.Key)
	assert.Equal(t, "v7", s.VersionID)
	assert.Equal(t, "s3://models/assy/spider.json?versionId=v7", s.String())

	for _, bad := range []string{"", "s3://", "s3://bucket", "s3:///key"} {
		_, err := NewSource(ctx, bad)
		assert.Error(t, err, bad)
	}
}

func TestLocal_Load(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	f, err := Load(ctx, "testdata/spider.yaml")
	require.NoError(t, err)
	assert.Len(t, f.Relations, 2)

	_, err = Load(ctx, "testdata/missing.json")
	assert.ErrorContains(t, err, "failed to read dump")

	_, err = Load(ctx, "testdata/invalid.yaml")
	assert.ErrorContains(t, err, "Parts[0].ID")

	f, err = Load(ctx, "testdata/invalid.yaml", WithValidation(false))
	require.NoError(t, err)
	assert.Len(t, f.Parts, 1)
}

func TestLocal_LoadCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "testdata/spider.json")
	assert.ErrorIs(t, err, context.Canceled)
}

// fakeS3 serves objects from memory and counts calls.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	etag    string
	heads   int
	gets    int
	version string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3v2.HeadObjectInput, _ ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heads++
	if _, ok := f.objects[awsv2.ToString(in.Key)]; !ok {
		return nil, errors.New("NotFound")
	}
	return &s3v2.HeadObjectOutput{ETag: awsv2.String(`"` + f.etag + `"`)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3v2.GetObjectInput, _ ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	f.version = awsv2.ToString(in.VersionId)
	data, ok := f.objects[awsv2.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3v2.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3_LoadCaches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{"spider.json": readTestdata(t, "spider.json")}, etag: "abc"}
	store := cacheutil.At(t.TempDir())

	for range 2 {
		f, err := Load(ctx, "s3://models/spider.json", WithS3Client(fake), WithCache(store))
		require.NoError(t, err)
		assert.Len(t, f.Parts, 2)
		assert.Equal(t, "spider.json", f.Header.FilePath)
	}

	assert.Equal(t, 2, fake.heads)
	assert.Equal(t, 1, fake.gets, "second load is served from the cache")

	_, ok := store.Get(cacheBucket, "models/spider.json@abc")
	assert.True(t, ok)

	// A new etag misses the cache.
	fake.etag = "def"
	_, err := Load(ctx, "s3://models/spider.json", WithS3Client(fake), WithCache(store))
	require.NoError(t, err)
	assert.Equal(t, 2, fake.gets)
}

func TestS3_LoadVersionPinned(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{"spider.yaml": readTestdata(t, "spider.yaml")}}
	store := cacheutil.At(t.TempDir())

	f, err := Load(ctx, "s3://models/spider.yaml?versionId=v3", WithS3Client(fake), WithCache(store))
	require.NoError(t, err)
	assert.Len(t, f.Parts, 3)
	assert.Equal(t, "v3", fake.version)
	assert.Zero(t, fake.heads, "pinned versions skip the HEAD request")

	_, ok := store.Get(cacheBucket, "models/spider.yaml@v3")
	assert.True(t, ok)
}

func TestS3_LoadNoCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{"spider.json": readTestdata(t, "spider.json")}}

	_, err := Load(ctx, "s3://models/spider.json", WithS3Client(fake), WithCache(cacheutil.Store{}))
	require.NoError(t, err)
	assert.Zero(t, fake.heads)
	assert.Equal(t, 1, fake.gets)
}

func TestS3_LoadMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}

	_, err := Load(ctx, "s3://models/none.json", WithS3Client(fake), WithCache(cacheutil.At(t.TempDir())))
	assert.ErrorContains(t, err, "failed to head S3 object")

	_, err = Load(ctx, "s3://models/none.json", WithS3Client(fake), WithCache(cacheutil.Store{}))
	assert.ErrorContains(t, err, "failed to get S3 object")
}

func TestRevisions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Now()
	files := []struct {
		name string
		age  time.Duration
	}{
		{"old.json", 3 * time.Hour},
		{"newest.yaml", 0},
		{"middle.yml", time.Hour},
		{"notes.txt", 0},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0o600))
		mod := now.Add(-f.age)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	revs, err := Revisions(dir)
	require.NoError(t, err)
	require.Len(t, revs, 3)

	var names []string
	for i, r := range revs {
		names = append(names, r.Name)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, filepath.Join(dir, r.Name), r.Path)
		assert.Equal(t, int64(2), r.Size)
	}
	assert.Equal(t, []string{"newest.yaml", "middle.yml", "old.json"}, names)

	_, err = Revisions(filepath.Join(dir, "missing"))
	assert.ErrorContains(t, err, "failed to list revisions")
}

func TestIsDump(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDump("a.json"))
	assert.True(t, IsDump("a.YAML"))
	assert.True(t, IsDump("a.yml"))
	assert.False(t, IsDump("a.stp"))
	assert.False(t, IsDump("json"))
}

// stubSource returns a canned result after an optional wait on ctx.
type stubSource struct {
	name  string
	file  *step.File
	err   error
	block bool
}

func (s stubSource) Load(ctx context.Context) (*step.File, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.file, s.err
}

func (s stubSource) String() string { return s.name }

func TestLoadPair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a := &step.File{Parts: []step.Part{{ID: 1, Name: "A"}}}
	b := &step.File{Parts: []step.Part{{ID: 1, Name: "B"}}}

	fa, fb, err := LoadPair(ctx, stubSource{name: "a", file: a}, stubSource{name: "b", file: b})
	require.NoError(t, err)
	assert.Same(t, a, fa)
	assert.Same(t, b, fb)
}

func TestLoadPair_FirstErrorCancelsOther(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := LoadPair(ctx, stubSource{name: "slow", block: true}, stubSource{name: "bad", err: boom})
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to load bad")

	_, _, err = LoadPair(ctx, stubSource{name: "bad", err: boom}, stubSource{name: "slow", block: true})
	require.ErrorIs(t, err, boom)
}
