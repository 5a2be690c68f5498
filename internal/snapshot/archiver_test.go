package snapshot

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	return f.PutObject(in)
}

func TestArchiveLocal(t *testing.T) {
	dir := t.TempDir()
	a, err := NewLocal(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", a.Mode())

	path, err := a.Archive(Snapshot{
		Reason:      "role:admin",
		ChangedBy:   7,
		Permissions: map[string][]string{"admin": {"orders", "dashboard"}},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Snapshot
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, uint(7), got.ChangedBy)
	assert.Equal(t, []string{"dashboard", "orders"}, got.Permissions["admin"])
	assert.Equal(t, []string{}, got.RestrictedPages)

	latest, err := a.Latest()
	require.NoError(t, err)
	assert.Equal(t, got.ID, latest.ID)
}

func TestLatestEmpty(t *testing.T) {
	a, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = a.Latest()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArchiveS3(t *testing.T) {
	client := &fakeS3{}
	a := NewWithClient("dropux-snapshots", client)
	assert.Equal(t, "s3", a.Mode())

	key, err := a.Archive(Snapshot{Reason: "restricted", RestrictedPages: []string{"roles"}})
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	assert.Equal(t, "dropux-snapshots", aws.StringValue(client.inputs[0].Bucket))
	assert.Equal(t, key, aws.StringValue(client.inputs[0].Key))
	assert.True(t, strings.HasPrefix(key, "permissions/"))
	assert.Contains(t, string(client.bodies[0]), `"roles"`)

	_, err = a.Latest()
	assert.Error(t, err)
}

func TestNilArchiver(t *testing.T) {
	var a *Archiver
	assert.Equal(t, "off", a.Mode())
	path, err := a.Archive(Snapshot{})
	assert.NoError(t, err)
	assert.Empty(t, path)
}
