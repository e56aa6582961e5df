package listbuilder

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listbuilder/internal/catalog"
	"listbuilder/internal/catalog/catalogtest"
	"listbuilder/internal/classify"
	"listbuilder/internal/config"
	"listbuilder/internal/dialect"
	"listbuilder/internal/fleet"
	"listbuilder/internal/log"
	"listbuilder/internal/vlb"
	"listbuilder/internal/vlog"
)

const malformedList = "Test (10/400)\n==========\nCR90 Corvette A (44)\n· Leia Organa (3) (again)"

const rebelList = "ship:cr90 corvette a\nupgrade:leia organa\nship:assault frigate mark ii\nupgrade:external racks\nsquadron:x-wing\nsquadron:biggs darklighter"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	templates := filepath.Join(dir, "working")
	require.NoError(t, os.MkdirAll(templates, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(templates, vlog.ModuleData), []byte("<data version=\"3.2\"/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(templates, vlog.SaveData), []byte("<data/>"), 0o644))

	cfg := config.DefaultConfig()
	cfg.Catalog.Path = catalogtest.SQLiteFile(t)
	cfg.Paths.TemplateDir = templates
	cfg.Paths.ScratchDir = filepath.Join(dir, "scratch")
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	return cfg
}

func newService(t *testing.T, cfg *config.Config, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithGUIDSource(fleet.NewSequentialGUIDs(1)), WithLogger(log.Discard())}, opts...)
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func TestNewOpensCatalog(t *testing.T) {
	cfg := testConfig(t)
	s := newService(t, cfg)
	cat, err := s.loadCatalog()
	require.NoError(t, err)
	assert.IsType(t, &catalog.Memory{}, cat)
	assert.Nil(t, s.closer)

	again, err := s.loadCatalog()
	require.NoError(t, err)
	assert.Same(t, cat, again)

	cfg.Catalog.Preload = false
	direct := newService(t, cfg)
	cat, err = direct.loadCatalog()
	require.NoError(t, err)
	assert.IsType(t, &catalog.SQLite{}, cat)
	assert.NoError(t, direct.Close())
}

func TestNewErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.Unresolved = "ignore"
	_, err := New(cfg)
	assert.ErrorContains(t, err, "invalid configuration")

	cfg = testConfig(t)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.vlo")
	s, err := New(cfg, WithLogger(log.Discard()))
	require.NoError(t, err, "the catalog is opened on first parse")
	_, err = s.Parse(context.Background(), rebelList)
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Catalog.Nomenclature = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(cfg, WithLogger(log.Discard()))
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Import.Dialect = "vassal"
	_, err = New(cfg, WithLogger(log.Discard()))
	assert.ErrorContains(t, err, `unknown dialect "vassal"`)
}

func TestForcedDialectSkipsDetection(t *testing.T) {
	_, err := newService(t, testConfig(t)).Parse(context.Background(), malformedList)
	require.Error(t, err, "detected as an Armada Fleets Designer list")

	cfg := testConfig(t)
	cfg.Import.Dialect = " AFF "
	res, err := newService(t, cfg).Parse(context.Background(), malformedList)
	require.NoError(t, err)
	assert.Equal(t, classify.AFF, res.Dialect)
	assert.Empty(t, res.Fleet.Ships)
}

func TestImportWritesVLB(t *testing.T) {
	cfg := testConfig(t)
	s := newService(t, cfg)

	res, err := s.Import(context.Background(), rebelList, "")
	require.NoError(t, err)
	assert.Equal(t, classify.AFF, res.Dialect)
	assert.Equal(t, cfg.Paths.OutputDir, filepath.Dir(res.Output))
	assert.Equal(t, ".vlb", filepath.Ext(res.Output))
	assert.Equal(t, fleet.Counts{Ships: 2, Upgrades: 2, Squadrons: 2}, res.Fleet.Counts())

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, vlb.Header))
	assert.Contains(t, text, vlb.DefaultBanner[0])
	assert.NotContains(t, text, "vlb_")
	assert.Len(t, vlb.Records(text), len(res.Fleet.Pieces()))
}

func TestImportBanner(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.Banner = []string{"League night"}
	s := newService(t, cfg)

	out := filepath.Join(t.TempDir(), "fleet.vlb")
	_, err := s.Import(context.Background(), rebelList, out)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "League night")
	assert.Contains(t, string(data), vlb.DefaultBanner[1])
}

func TestUnresolvedPolicies(t *testing.T) {
	text := "ship:millennium falcon\nship:cr90 corvette a"
	tests := []struct {
		policy   config.UnresolvedPolicy
		reported int
		strict   bool
	}{
		{config.PolicyLog, 0, false},
		{config.PolicyReport, 1, false},
		{config.PolicyStrict, 0, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Import.Unresolved = tt.policy
			s := newService(t, cfg)

			res, err := s.Parse(context.Background(), text)
			if tt.strict {
				var ul *UnresolvedListError
				require.ErrorAs(t, err, &ul)
				assert.Len(t, ul.Pieces, 1)
				assert.ErrorIs(t, err, fleet.ErrUnresolved)
				assert.Contains(t, err.Error(), "millenniumfalcon")
				return
			}
			require.NoError(t, err)
			assert.Len(t, res.Unresolved, tt.reported)
			assert.Len(t, res.Fleet.Ships, 1)
		})
	}
}

func TestParseFailurePropagates(t *testing.T) {
	s := newService(t, testConfig(t))
	_, err := s.Import(context.Background(), malformedList, "")
	var pf *dialect.ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, classify.AFD, pf.Dialect)
	assert.Equal(t, 4, pf.LineNo)
}

func TestConvertThenDecode(t *testing.T) {
	cfg := testConfig(t)
	s := newService(t, cfg)
	ctx := context.Background()

	res, err := s.Convert(ctx, rebelList, "")
	require.NoError(t, err)
	assert.Equal(t, ".vlog", filepath.Ext(res.Output))

	entries := readZip(t, res.Output)
	assert.Equal(t, "<data version=\"3.2\"/>", entries[vlog.ModuleData])
	assert.Equal(t, "<data/>", entries[vlog.SaveData])
	require.True(t, strings.HasPrefix(entries[vlog.SavedGame], vlog.Magic+"a1"))

	decoded, err := s.Decode(ctx, res.Output, "")
	require.NoError(t, err)
	got, err := os.ReadFile(decoded)
	require.NoError(t, err)

	serialized := vlb.Serialize(res.Fleet)
	flat := strings.NewReplacer("\r", "", "\n", "").Replace(serialized)
	assert.Equal(t, vlog.Format(flat), string(got))

	scratch, err := os.ReadDir(cfg.Paths.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, scratch, "workspaces are removed after use")
}

func TestExport(t *testing.T) {
	s := newService(t, testConfig(t))
	ctx := context.Background()

	imported, err := s.Import(ctx, rebelList, "")
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "nested", "fleet.vlog")
	out, err := s.Export(ctx, imported.Output, dst)
	require.NoError(t, err)
	assert.Equal(t, dst, out)

	data, err := os.ReadFile(imported.Output)
	require.NoError(t, err)
	want, err := vlog.Encode(string(data))
	require.NoError(t, err)
	assert.Equal(t, want, readZip(t, out)[vlog.SavedGame])

	_, err = s.Export(ctx, filepath.Join(t.TempDir(), "missing.vlb"), "")
	assert.ErrorContains(t, err, "read vlb")
}

func TestConvertMissingTemplateLeavesNoOutput(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.TemplateDir, vlog.SaveData)))
	s := newService(t, cfg)

	dst := filepath.Join(t.TempDir(), "fleet.vlog")
	_, err := s.Convert(context.Background(), rebelList, dst)
	require.Error(t, err)
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecodeRejectsCorruptLog(t *testing.T) {
	cfg := testConfig(t)
	s := newService(t, cfg)

	bad := filepath.Join(t.TempDir(), "bad.vlog")
	require.NoError(t, vlog.Pack(bad, "!VCSKzz00", cfg.Paths.TemplateDir))
	_, err := s.Decode(context.Background(), bad, "")
	var ce *vlog.CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 5, ce.Offset)
}

func TestIdentify(t *testing.T) {
	s := newService(t, testConfig(t))
	d, scores := s.Identify(rebelList)
	assert.Equal(t, classify.AFF, d)
	assert.False(t, scores.Ambiguous())
}

func TestCanceledContext(t *testing.T) {
	s := newService(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Convert(ctx, rebelList, "")
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = s.Decode(ctx, "whatever.vlog", "")
	assert.True(t, errors.Is(err, context.Canceled))
}
