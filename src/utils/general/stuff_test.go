package general

import (
	"path/filepath"
	"testing"
)

func TestGetCurrentFilepath(t *testing.T) {
	path := GetCurrentFilepath()
	if path == "" {
		t.Error("Expected non-empty filepath")
	}
	if !filepath.IsAbs(path) {
		t.Error("Expected absolute path")
	}
}

func TestGetCurrentDir(t *testing.T) {
	dir := GetCurrentDir()
	if dir == "" {
		t.Error("Expected non-empty directory")
	}
	if !filepath.IsAbs(dir) {
		t.Error("Expected absolute path")
	}
}

func TestGenerateUUID5IsStable(t *testing.T) {
	first := GenerateUUID5StringFromByteArray([]byte("window: 60"))
	second := GenerateUUID5StringFromByteArray([]byte("window: 60"))
	other := GenerateUUID5StringFromByteArray([]byte("window: 61"))
	if first != second {
		t.Errorf("Expected stable UUID, got %s and %s", first, second)
	}
	if first == other {
		t.Error("Expected different inputs to give different UUIDs")
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		path    string
		want    string
	}{
		{"Relative", "/etc/pairbot", "data/KO.csv", "/etc/pairbot/data/KO.csv"},
		{"Absolute", "/etc/pairbot", "/data/KO.csv", "/data/KO.csv"},
		{"Empty", "/etc/pairbot", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.baseDir, tt.path); got != tt.want {
				t.Errorf("ResolvePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestObjectPath(t *testing.T) {
	if got := ObjectPath("runs/2024", "/tmp/out/ko_pep_summary.json"); got != "runs/2024/ko_pep_summary.json" {
		t.Errorf("ObjectPath() = %v", got)
	}
	if got := ObjectPath("", "/tmp/out/a.png"); got != "a.png" {
		t.Errorf("ObjectPath() = %v", got)
	}
}

func TestGetSystemUsage(t *testing.T) {
	usage := GetSystemUsage()
	if usage["num_cpu"] == "" {
		t.Error("Expected num_cpu in report")
	}
}
