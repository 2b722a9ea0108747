package bucket

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// UploadDir pushes every file under dir to an S3 bucket, keyed by its path
// relative to dir under the given prefix.
func UploadDir(bucketName string, prefix string, dir string) error {
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return fmt.Errorf("Could not create an S3 session because %s", err.Error())
	}
	uploader := s3manager.NewUploader(sess)

	walk := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		key := filepath.ToSlash(filepath.Join(prefix, rel))
		_, err = uploader.Upload(&s3manager.UploadInput{
			Bucket: aws.String(bucketName),
			Key:    aws.String(key),
			Body:   f,
		})
		if err != nil {
			return fmt.Errorf("Could not upload %v because %s", key, err.Error())
		}
		fmt.Printf("Uploaded %v\n", key)
		return nil
	}
	return filepath.WalkDir(dir, walk)
}
