package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNormalizePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"/data/./photos/", "/data/photos"},
		{"/data/../data/photos", "/data/photos"},
		{"relative//dir", "relative/dir"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizePath(tt.in); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("/data"); err != nil {
		t.Errorf("ValidatePath() error = %v, want nil", err)
	}

	for _, path := range []string{"", "/data\x00/x"} {
		err := ValidatePath(path)
		var pe *PathError
		if !errors.As(err, &pe) {
			t.Errorf("ValidatePath(%q) error = %v, want *PathError", path, err)
		}
	}
}

func TestIsAbsolute(t *testing.T) {
	abs, _ := filepath.Abs(".")
	if !IsAbsolute(abs) {
		t.Errorf("IsAbsolute(%q) = false", abs)
	}
	if IsAbsolute("data") {
		t.Error("IsAbsolute(\"data\") = true")
	}
}

func TestStat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("abcd"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	modified := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, modified, modified); err != nil {
		t.Fatalf("failed to set times: %v", err)
	}

	t.Run("RegularFile", func(t *testing.T) {
		st, err := Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if !st.Regular {
			t.Error("Regular = false, want true")
		}
		if st.Size != 4 {
			t.Errorf("Size = %d, want 4", st.Size)
		}
		if !st.Modified.Equal(modified) {
			t.Errorf("Modified = %v, want %v", st.Modified, modified)
		}
		if st.Created.IsZero() || st.Accessed.IsZero() {
			t.Error("Created and Accessed must be set")
		}
	})

	t.Run("Directory", func(t *testing.T) {
		st, err := Stat(dir)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if st.Regular {
			t.Error("Regular = true for a directory")
		}
	})

	t.Run("SymlinkNotFollowed", func(t *testing.T) {
		link := filepath.Join(dir, "link")
		if err := os.Symlink(path, link); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
		st, err := Stat(link)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if st.Regular {
			t.Error("Regular = true for a symlink")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := Stat(filepath.Join(dir, "missing"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat() error = %v, want ErrNotExist", err)
		}
		var se *StatError
		if !errors.As(err, &se) {
			t.Errorf("error type = %T, want *StatError", err)
		}
	})
}
