package general

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

func GetCurrentFilepath() string {
	_, filename, _, _ := runtime.Caller(1)
	return filepath.Dir(filename)
}

func GetCurrentDir() string {
	return filepath.Dir(GetCurrentFilepath())
}

func GenerateUUID5StringFromByteArray(p []byte) string {
	UUID5Namespace := "f1c8f8d4-1a8e-4b2c-9d3f-5e6c7b8a9d0c"

	namespaceUUID, err := uuid.Parse(UUID5Namespace)
	if err != nil {
		slog.Warn(fmt.Sprintf("Error parsing namespace UUID: %+v", err))
	}
	// Generate the UUID version 5.
	uuid5 := uuid.NewSHA1(namespaceUUID, p)
	return uuid5.String()
}

// ResolvePath joins a relative path onto baseDir. Absolute and empty paths
// are returned unchanged.
func ResolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// ObjectPath is the bucket object name for a local file under prefix.
func ObjectPath(prefix, localFile string) string {
	return path.Join(prefix, filepath.Base(localFile))
}

func CopyFileToBucket(ctx context.Context, localFile, bucketName, objectPath string) error {
	// Create storage client
	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := os.Open(localFile)
	if err != nil {
		return err
	}
	defer f.Close()

	// Create the bucket handle
	bucket := client.Bucket(bucketName)
	obj := bucket.Object(objectPath)

	// Create a new bucket writer
	writer := obj.NewWriter(ctx)

	// Copy the data
	if _, err := io.Copy(writer, f); err != nil {
		writer.Close()
		return err
	}

	// Close the writer
	if err := writer.Close(); err != nil {
		return err
	}

	slog.Info("Uploaded file to bucket", "file", localFile, "bucket", bucketName, "object", objectPath)
	return nil
}

func GetSystemUsage() map[string]string {
	// get memory, cpu usage, etc
	report := make(map[string]string)

	numCpu := runtime.NumCPU()
	report["num_cpu"] = fmt.Sprintf("%d", numCpu)

	// go routine count
	numGoroutine := runtime.NumGoroutine()
	report["num_goroutine"] = fmt.Sprintf("%d", numGoroutine)

	memoryUsage := runtime.MemStats{}
	runtime.ReadMemStats(&memoryUsage)
	report["memory_usage"] = fmt.Sprintf("%d", memoryUsage.Alloc)
	report["memory_total"] = fmt.Sprintf("%d", memoryUsage.TotalAlloc)
	report["memory_heap_alloc"] = fmt.Sprintf("%d", memoryUsage.HeapAlloc)
	report["memory_heap_inuse"] = fmt.Sprintf("%d", memoryUsage.HeapInuse)

	return report
}
