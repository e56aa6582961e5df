//go:build integration

package setup

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"listbuilder/internal/catalog/catalogtest"
	"listbuilder/internal/config"
	"listbuilder/internal/fleet"
	"listbuilder/internal/listbuilder"
	"listbuilder/internal/log"
	"listbuilder/internal/vlb"
	"listbuilder/internal/vlog"
)

// PipelineSetup is a complete environment for running conversions: a seeded
// catalog, template files and private scratch and output directories
type PipelineSetup struct {
	Dir         string
	CatalogPath string
	TemplateDir string
	ScratchDir  string
	OutputDir   string
	Config      *config.Config
	Service     *listbuilder.Service
}

// Template file contents written into every test template directory
const (
	ModuleDataContent = "<data version=\"1\"><name>Star Wars Armada</name></data>"
	SaveDataContent   = "<data version=\"1\"/>"
)

// SetupPipeline creates the environment and a service over it
func SetupPipeline(t *testing.T) *PipelineSetup {
	t.Helper()
	dir := t.TempDir()
	s := &PipelineSetup{
		Dir:         dir,
		CatalogPath: catalogtest.SQLiteFile(t),
		TemplateDir: filepath.Join(dir, "working"),
		ScratchDir:  filepath.Join(dir, "scratch"),
		OutputDir:   filepath.Join(dir, "out"),
	}
	if err := os.MkdirAll(s.TemplateDir, 0o755); err != nil {
		t.Fatalf("Failed to create template dir: %v", err)
	}
	for name, content := range map[string]string{vlog.ModuleData: ModuleDataContent, vlog.SaveData: SaveDataContent} {
		if err := os.WriteFile(filepath.Join(s.TemplateDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write template %s: %v", name, err)
		}
	}

	cfg := config.DefaultConfig()
	cfg.Catalog.Path = s.CatalogPath
	cfg.Paths.TemplateDir = s.TemplateDir
	cfg.Paths.ScratchDir = s.ScratchDir
	cfg.Paths.OutputDir = s.OutputDir
	s.Config = cfg

	svc, err := listbuilder.New(cfg,
		listbuilder.WithLogger(log.Discard()),
		listbuilder.WithGUIDSource(fleet.NewSequentialGUIDs(1000)))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	s.Service = svc
	t.Cleanup(func() { svc.Close() })
	return s
}

// Args returns the global CLI flags pointing at this environment
func (s *PipelineSetup) Args() []string {
	return []string{
		"--config", filepath.Join(s.Dir, "absent.yaml"),
		"--catalog", s.CatalogPath,
		"--template-dir", s.TemplateDir,
		"--scratch-dir", s.ScratchDir,
		"--out-dir", s.OutputDir,
		"--log-file", filepath.Join(s.Dir, "listbuilder.log"),
	}
}

// SampleNames lists the sample exports shipped with the dialect tests
var SampleNames = []string{"fab.txt", "warlord.txt", "afd.txt", "kingston.txt", "aff.txt"}

// SamplePath returns the path of a sample export
func SamplePath(t *testing.T, name string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to locate setup package")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "internal", "dialect", "testdata", name)
}

// ReadSample returns the text of a sample export
func ReadSample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(SamplePath(t, name))
	if err != nil {
		t.Fatalf("Failed to read sample %s: %v", name, err)
	}
	return string(data)
}

// LogRecords unpacks a .vlog and returns the piece records of its decoded save
func LogRecords(t *testing.T, vlogPath string) []string {
	t.Helper()
	saved, err := vlog.Unpack(vlogPath, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to unpack %s: %v", vlogPath, err)
	}
	clear, err := vlog.Decode(saved)
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", vlogPath, err)
	}
	return vlb.Records(clear)
}

// AssertScratchEmpty fails if any workspace was left behind
func (s *PipelineSetup) AssertScratchEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(s.ScratchDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("Failed to read scratch dir: %v", err)
	}
	if len(entries) > 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Scratch dir not cleaned up: %s", strings.Join(names, ", "))
	}
}
