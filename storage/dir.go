package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/justapithecus/filebridge/iox"
)

// Backend names the store behind a Dir.
type Backend string

// Supported backends.
const (
	BackendFS     Backend = "fs"
	BackendS3     Backend = "s3"
	BackendMemory Backend = "memory"
)

// ParseBackend parses a backend name. Empty means fs.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(s)) {
	case "", BackendFS:
		return BackendFS, nil
	case BackendS3:
		return BackendS3, nil
	case BackendMemory:
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q (must be fs, s3 or memory)", s)
	}
}

// FileInfo describes one file of a Dir.
type FileInfo struct {
	Name      string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Modified  time.Time `json:"modified,omitzero"`
}

// Dir is a flat directory of files. Names never contain path separators.
type Dir struct {
	root    string
	backend Backend
	store   lode.Store
	// objects answers listing and size queries from S3 metadata. Nil for
	// other backends.
	objects *s3Objects
}

// NewFS returns a Dir over a local directory, creating it if needed.
func NewFS(root string) (*Dir, error) {
	if root == "" {
		return nil, errors.New("directory path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, wrap("init", root, err)
	}
	store, err := lode.NewFSFactory(root)()
	if err != nil {
		return nil, wrap("init", root, err)
	}
	return &Dir{root: root, backend: BackendFS, store: store}, nil
}

// NewMemory returns an in-memory Dir. Used by tests and dry runs.
func NewMemory(name string) *Dir {
	return &Dir{root: "mem://" + name, backend: BackendMemory, store: lode.NewMemory()}
}

// NewWithStore wraps an existing store.
func NewWithStore(root string, backend Backend, store lode.Store) *Dir {
	return &Dir{root: root, backend: backend, store: store}
}

// S3Config holds configuration for an S3-backed Dir.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket.
	Prefix string
	// Region is the AWS region; empty uses the default chain.
	Region string
	// Endpoint is a custom endpoint for S3-compatible providers (R2, MinIO).
	Endpoint string
	// UsePathStyle forces path-style addressing.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses "bucket/prefix" or "bucket".
func ParseS3Path(p string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(p, "s3://"), "/")
	return bucket, strings.Trim(prefix, "/")
}

// NewS3 returns a Dir over an S3 bucket prefix using the AWS default
// credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*Dir, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, wrap("init", cfg.Bucket, fmt.Errorf("load AWS config: %w", err))
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = &endpoint })
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	client := s3.NewFromConfig(awsConfig, s3Opts...)
	store, err := lodes3.New(client, lodes3.Config{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	})
	if err != nil {
		return nil, wrap("init", cfg.Bucket, err)
	}

	root := "s3://" + cfg.Bucket
	if cfg.Prefix != "" {
		root += "/" + cfg.Prefix
	}
	objects := &s3Objects{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}
	return &Dir{root: root, backend: BackendS3, store: store, objects: objects}, nil
}

// Root returns the directory location.
func (d *Dir) Root() string { return d.root }

// Backend returns the backend kind.
func (d *Dir) Backend() Backend { return d.backend }

// Path returns the full location of a file in the directory.
func (d *Dir) Path(name string) string {
	if d.backend == BackendFS {
		return filepath.Join(d.root, name)
	}
	return d.root + "/" + name
}

// CheckName rejects names that would escape a flat directory.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Exists reports whether a file is present.
func (d *Dir) Exists(ctx context.Context, name string) (bool, error) {
	if err := CheckName(name); err != nil {
		return false, err
	}
	ok, err := d.store.Exists(ctx, name)
	if err != nil {
		return false, wrap("stat", d.Path(name), err)
	}
	return ok, nil
}

// Read returns the full contents of a file. Missing files are ErrNotFound.
func (d *Dir) Read(ctx context.Context, name string) ([]byte, error) {
	exists, err := d.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &Error{Kind: ErrNotFound, Op: "read", Path: d.Path(name), Err: os.ErrNotExist}
	}
	rc, err := d.store.Get(ctx, name)
	if err != nil {
		return nil, wrap("read", d.Path(name), err)
	}
	defer iox.DiscardClose(rc)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, wrap("read", d.Path(name), err)
	}
	return data, nil
}

// Write stores data under name, replacing any existing file.
func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	exists, err := d.store.Exists(ctx, name)
	if err != nil {
		return wrap("write", d.Path(name), err)
	}
	if exists {
		if err := d.store.Delete(ctx, name); err != nil {
			return wrap("write", d.Path(name), err)
		}
	}
	if err := d.store.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return wrap("write", d.Path(name), err)
	}
	return nil
}

// Stat returns size (and modification time on fs and S3) of one file. S3
// answers from object metadata; only the in-memory backend reads the body.
func (d *Dir) Stat(ctx context.Context, name string) (FileInfo, error) {
	if err := CheckName(name); err != nil {
		return FileInfo{}, err
	}
	switch {
	case d.objects != nil:
		files, err := d.objects.list(ctx, name, 0)
		if err != nil {
			return FileInfo{}, wrap("stat", d.Path(name), err)
		}
		if len(files) == 0 {
			return FileInfo{}, &Error{Kind: ErrNotFound, Op: "stat", Path: d.Path(name), Err: os.ErrNotExist}
		}
		return files[0], nil
	case d.backend == BackendFS:
		fi, err := os.Stat(d.Path(name))
		if err != nil {
			return FileInfo{}, wrap("stat", d.Path(name), err)
		}
		return FileInfo{Name: name, SizeBytes: fi.Size(), Modified: fi.ModTime()}, nil
	default:
		data, err := d.Read(ctx, name)
		if err != nil {
			return FileInfo{}, err
		}
		return FileInfo{Name: name, SizeBytes: int64(len(data))}, nil
	}
}

// List returns the files directly in the directory, sorted by name. Nested
// entries (not produced by the bridge) are skipped.
func (d *Dir) List(ctx context.Context) ([]FileInfo, error) {
	if d.objects != nil {
		files, err := d.objects.list(ctx, "", 0)
		if err != nil {
			return nil, wrap("list", d.root, err)
		}
		return files, nil
	}

	keys, err := d.store.List(ctx, "")
	if err != nil {
		if errors.Is(wrap("list", d.root, err), ErrNotFound) {
			return []FileInfo{}, nil
		}
		return nil, wrap("list", d.root, err)
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimPrefix(path.Clean("/"+k), "/")
		if CheckName(k) == nil {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	out := make([]FileInfo, 0, len(names))
	for _, n := range names {
		fi, err := d.Stat(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, fi)
	}
	return out, nil
}

// Ping verifies the directory is reachable. It lists keys only and never
// reads or sizes a file.
func (d *Dir) Ping(ctx context.Context) error {
	if d.objects != nil {
		if _, err := d.objects.list(ctx, "", 1); err != nil {
			return wrap("ping", d.root, err)
		}
		return nil
	}
	if _, err := d.store.List(ctx, ""); err != nil {
		if err = wrap("ping", d.root, err); errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// s3Objects lists a bucket prefix with ListObjectsV2, which carries size and
// modification time for every key.
type s3Objects struct {
	client s3.ListObjectsV2APIClient
	bucket string
	prefix string
}

func (o *s3Objects) keyPrefix() string {
	if o.prefix == "" {
		return ""
	}
	return o.prefix + "/"
}

// list returns the flat files under the prefix sorted by name. A non-empty
// name restricts the result to that exact file. maxKeys > 0 stops after the
// first page of at most that many keys.
func (o *s3Objects) list(ctx context.Context, name string, maxKeys int32) ([]FileInfo, error) {
	base := o.keyPrefix()
	in := &s3.ListObjectsV2Input{Bucket: aws.String(o.bucket), Prefix: aws.String(base + name)}
	if maxKeys > 0 {
		in.MaxKeys = aws.Int32(maxKeys)
	}

	var out []FileInfo
	pages := s3.NewListObjectsV2Paginator(o.client, in)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			n := strings.TrimPrefix(aws.ToString(obj.Key), base)
			if CheckName(n) != nil || (name != "" && n != name) {
				continue
			}
			fi := FileInfo{Name: n, SizeBytes: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				fi.Modified = *obj.LastModified
			}
			out = append(out, fi)
		}
		if maxKeys > 0 {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if out == nil {
		out = []FileInfo{}
	}
	return out, nil
}
