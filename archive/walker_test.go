package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}

	w := zip.NewWriter(zipFile)
	for name, content := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	w.Close()
	zipFile.Close()
	return zipPath
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"themes/base.css":  "a { color: red }",
		"themes/dark.css":  "a { color: white }",
		"themes/notes.txt": "not a stylesheet",
		"print.css":        "@media print {}",
		"readme.md":        "readme",
	})

	t.Run("prefix selects css only", func(t *testing.T) {
		var visited []string
		err := Walk(zipPath, "themes/", func(archive string, file *zip.File) error {
			if archive != zipPath {
				t.Errorf("archive = %s, want %s", archive, zipPath)
			}
			visited = append(visited, file.Name)
			return nil
		})
		if err != nil {
			t.Errorf("Walk() error = %v", err)
		}

		expected := map[string]bool{
			"themes/base.css": true,
			"themes/dark.css": true,
		}
		if len(visited) != len(expected) {
			t.Errorf("visited %d files, want %d", len(visited), len(expected))
		}
		for _, name := range visited {
			if !expected[name] {
				t.Errorf("unexpected file visited: %s", name)
			}
		}
	})

	t.Run("empty prefix matches everything with css extension", func(t *testing.T) {
		var visited int
		err := Walk(zipPath, "", func(archive string, file *zip.File) error {
			visited++
			return nil
		})
		if err != nil {
			t.Errorf("Walk() error = %v", err)
		}
		if visited != 3 {
			t.Errorf("visited %d files, want 3", visited)
		}
	})

	t.Run("no matching prefix", func(t *testing.T) {
		var visited int
		err := Walk(zipPath, "nonexistent/", func(archive string, file *zip.File) error {
			visited++
			return nil
		})
		if err != nil {
			t.Errorf("Walk() error = %v", err)
		}
		if visited != 0 {
			t.Errorf("visited %d files, want 0", visited)
		}
	})

	t.Run("walkFn error stops the walk", func(t *testing.T) {
		stopErr := errors.New("stop walking")
		var visited int
		err := Walk(zipPath, "", func(archive string, file *zip.File) error {
			visited++
			return stopErr
		})
		if err != stopErr {
			t.Errorf("Walk() error = %v, want %v", err, stopErr)
		}
		if visited != 1 {
			t.Errorf("visited %d files, want 1 (early termination)", visited)
		}
	})
}

func TestWalk_InvalidArchive(t *testing.T) {
	t.Run("nonexistent file", func(t *testing.T) {
		err := Walk("/nonexistent/file.zip", "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})

	t.Run("invalid zip file", func(t *testing.T) {
		invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
			t.Fatalf("Failed to create invalid zip: %v", err)
		}

		err := Walk(invalidZip, "", func(archive string, file *zip.File) error {
			return nil
		})
		if err == nil {
			t.Error("Expected error for invalid zip file")
		}
	})
}

func TestWalk_SkipsDirectories(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}

	w := zip.NewWriter(zipFile)
	dirHeader := &zip.FileHeader{Name: "styles.css/"}
	dirHeader.SetMode(os.ModeDir | 0755)
	if _, err := w.CreateHeader(dirHeader); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	fw, err := w.Create("styles.css/main.css")
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	fw.Write([]byte("body { margin: 0 }"))
	w.Close()
	zipFile.Close()

	var visited []string
	err = Walk(zipPath, "", func(archive string, file *zip.File) error {
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
	if len(visited) != 1 || visited[0] != "styles.css/main.css" {
		t.Errorf("visited %v, want [styles.css/main.css]", visited)
	}
}

func TestWalk_FileContent(t *testing.T) {
	content := "h1 { font-size: 2rem }"
	zipPath := makeZip(t, map[string]string{"site.css": content})

	err := Walk(zipPath, "", func(archive string, file *zip.File) error {
		rc, err := file.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if buf.String() != content {
			t.Errorf("content = %s, want %s", buf.String(), content)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestIsStylesheet(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"main.css", true},
		{"THEME.CSS", true},
		{"nested/dir/app.css", true},
		{"main.scss", false},
		{"css", false},
		{"style.css.bak", false},
	}
	for _, c := range cases {
		if got := IsStylesheet(c.name); got != c.want {
			t.Errorf("IsStylesheet(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
