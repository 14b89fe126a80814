package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/frahmantamala/agency-ops/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

type fakeObjects struct {
	existing map[string]bool
	puts     map[string][]byte
	types    map[string]string
	headErr  error
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if f.existing[*in.Key] {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, &types.NotFound{}
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[*in.Key] = data
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

var fixed = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

var _ = Describe("object paths", func() {
	It("dates and sanitises keys", func() {
		Expect(buildObjectPath(fixed, "Snapshots", "Full Backup!", ".JSON")).To(Equal("snapshots/2024/03/09/full-backup.json"))
	})

	It("falls back to defaults", func() {
		Expect(buildObjectPath(fixed, "", "", "")).To(HavePrefix("misc/2024/03/09/"))
		Expect(buildObjectPath(fixed, "", "", "")).To(HaveSuffix(".bin"))
	})

	It("joins prefixes", func() {
		Expect(joinPrefix("/backups/", "a/b.json")).To(Equal("backups/a/b.json"))
		Expect(joinPrefix("", "/a.json")).To(Equal("a.json"))
	})
})

var _ = Describe("LocalStorage", func() {
	It("writes below the base directory", func() {
		dir := GinkgoT().TempDir()
		s, err := NewLocalStorage(dir)
		Expect(err).NotTo(HaveOccurred())
		s.now = func() time.Time { return fixed }

		key, err := s.Save(context.Background(), []byte(`{"ok":true}`), SaveOptions{Category: "snapshots", BaseName: "full", Extension: "json"})
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("snapshots/2024/03/09/full.json"))

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"ok":true}`))
	})

	It("rejects empty payloads", func() {
		s, err := NewLocalStorage(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Save(context.Background(), nil, SaveOptions{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("S3Storage", func() {
	var fake *fakeObjects

	BeforeEach(func() {
		fake = &fakeObjects{existing: map[string]bool{}, puts: map[string][]byte{}, types: map[string]string{}}
	})

	It("puts the object under the prefix", func() {
		s := NewS3StorageWithClient(fake, "bucket", "/agency/")
		s.now = func() time.Time { return fixed }

		key, err := s.Save(context.Background(), []byte("{}"), SaveOptions{Category: "snapshots", BaseName: "full", Extension: "json"})
		Expect(err).NotTo(HaveOccurred())
		Expect(key).To(Equal("agency/snapshots/2024/03/09/full.json"))
		Expect(fake.puts).To(HaveKey(key))
		Expect(fake.types[key]).To(Equal("application/json"))
	})

	It("does not overwrite existing objects", func() {
		s := NewS3StorageWithClient(fake, "bucket", "")
		s.now = func() time.Time { return fixed }
		fake.existing["snapshots/2024/03/09/full.json"] = true

		_, err := s.Save(context.Background(), []byte("{}"), SaveOptions{Category: "snapshots", BaseName: "full", Extension: "json"})
		Expect(err).To(MatchError(ContainSubstring("already exists")))
		Expect(fake.puts).To(BeEmpty())
	})

	It("surfaces head errors other than not found", func() {
		fake.headErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
		s := NewS3StorageWithClient(fake, "bucket", "")

		_, err := s.Save(context.Background(), []byte("{}"), SaveOptions{Extension: "json"})
		Expect(err).To(MatchError(ContainSubstring("head object")))
	})

	It("validates S3 settings", func() {
		_, err := New(internal.StorageConfig{Type: "s3", S3Bucket: "b"})
		Expect(err).To(HaveOccurred())
		_, err = New(internal.StorageConfig{Type: "s3", S3Bucket: "b", S3Region: "us-east-1", S3AccessKeyID: "a", S3SecretAccessKey: "s"})
		Expect(err).NotTo(HaveOccurred())
	})
})
