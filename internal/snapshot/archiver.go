package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/jordymora1978/dropux-admin/internal/logger"
)

// Snapshot is the full permission state after a save, as written to the archive.
type Snapshot struct {
	ID              string              `json:"id"`
	TakenAt         time.Time           `json:"taken_at"`
	Reason          string              `json:"reason"`
	ChangedBy       uint                `json:"changed_by"`
	Permissions     map[string][]string `json:"permissions"`
	RestrictedPages []string            `json:"restricted_pages"`
}

// Archiver stores snapshots. A nil *Archiver discards them.
type Archiver struct {
	dir    string
	bucket string
	s3     s3iface.S3API
}

// NewLocal writes snapshots under dir, creating it when missing.
func NewLocal(dir string) (*Archiver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return &Archiver{dir: dir}, nil
}

// NewS3 uploads snapshots to bucket in region.
func NewS3(bucket, region string) (*Archiver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return NewWithClient(bucket, s3.New(sess)), nil
}

func NewWithClient(bucket string, client s3iface.S3API) *Archiver {
	return &Archiver{bucket: bucket, s3: client}
}

func (a *Archiver) Mode() string {
	switch {
	case a == nil:
		return "off"
	case a.s3 != nil:
		return "s3"
	default:
		return "local"
	}
}

// Archive stamps snap with an ID and time and stores it. It returns the
// object key or file path.
func (a *Archiver) Archive(snap Snapshot) (string, error) {
	if a == nil {
		return "", nil
	}
	snap.ID = uuid.New().String()
	snap.TakenAt = time.Now().UTC()
	for role := range snap.Permissions {
		sort.Strings(snap.Permissions[role])
	}
	if snap.RestrictedPages == nil {
		snap.RestrictedPages = []string{}
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s.json", snap.TakenAt.Format("20060102-150405"), snap.ID[:8])
	if a.s3 != nil {
		return a.upload(snap.TakenAt, name, body)
	}

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to save snapshot: %v", err)
	}
	logger.WithModule("snapshot").Infof("📦 Snapshot %s written to %s", snap.ID, path)
	return path, nil
}

func (a *Archiver) upload(at time.Time, name string, body []byte) (string, error) {
	key := fmt.Sprintf("permissions/%s/%s", at.Format("2006/01"), name)
	_, err := a.s3.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	logger.WithModule("snapshot").Infof("📦 Snapshot uploaded to s3://%s/%s", a.bucket, key)
	return key, nil
}

// Latest reads the newest local snapshot. Only local archives support it.
func (a *Archiver) Latest() (*Snapshot, error) {
	if a == nil || a.s3 != nil {
		return nil, fmt.Errorf("latest snapshot unavailable in %s mode", a.Mode())
	}
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, os.ErrNotExist
	}
	sort.Strings(names)

	raw, err := os.ReadFile(filepath.Join(a.dir, names[len(names)-1]))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
