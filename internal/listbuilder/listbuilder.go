// Package listbuilder runs the conversion pipeline: list text to a fleet, a
// fleet to save notation, and save notation to and from an encoded log.
package listbuilder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"listbuilder/internal/catalog"
	"listbuilder/internal/classify"
	"listbuilder/internal/config"
	"listbuilder/internal/dialect"
	"listbuilder/internal/fleet"
	"listbuilder/internal/log"
	"listbuilder/internal/nomenclature"
	"listbuilder/internal/vlb"
	"listbuilder/internal/vlog"
	"listbuilder/internal/workspace"
)

// Service holds the shared read-only collaborators of every conversion.
// It is safe for concurrent use. The catalog is opened on first use so
// commands that never parse a list do not need one.
type Service struct {
	cfg      *config.Config
	catalog  catalog.Catalog
	resolver *nomenclature.Resolver
	guids    fleet.GUIDSource
	logger   *slog.Logger
	forced   *classify.Dialect // nil detects the format of every list

	loadCatalog func() (catalog.Catalog, error)
	mu          sync.Mutex
	closer      io.Closer
}

// Option configures a Service
type Option func(*Service)

// WithCatalog uses cat instead of opening the configured catalog file
func WithCatalog(cat catalog.Catalog) Option {
	return func(s *Service) { s.catalog = cat }
}

// WithResolver replaces the nomenclature tables
func WithResolver(r *nomenclature.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithGUIDSource makes piece identifiers predictable
func WithGUIDSource(src fleet.GUIDSource) Option {
	return func(s *Service) { s.guids = src }
}

// WithLogger sets the logger; the default is the global logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New validates cfg and builds the nomenclature resolver
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &Service{cfg: cfg, logger: log.Logger()}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Import.Dialect != "" {
		d, err := classify.ParseDialect(cfg.Import.Dialect)
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		s.forced = &d
	}

	if s.resolver == nil {
		r, err := nomenclature.WithOverrides(cfg.Catalog.Nomenclature)
		if err != nil {
			return nil, err
		}
		s.resolver = r
	}

	if s.catalog != nil {
		cat := s.catalog
		s.loadCatalog = func() (catalog.Catalog, error) { return cat, nil }
	} else {
		s.loadCatalog = sync.OnceValues(s.openCatalog)
	}
	return s, nil
}

func (s *Service) openCatalog() (catalog.Catalog, error) {
	store, err := catalog.Open(s.cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog opened", "path", store.Filename())
	if !s.cfg.Catalog.Preload {
		s.mu.Lock()
		s.closer = store
		s.mu.Unlock()
		return store, nil
	}
	defer store.Close()
	mem, err := catalog.Preload(store)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog preloaded", "path", store.Filename(), "templates", mem.Len())
	return mem, nil
}

// Close releases the catalog if the service opened it
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Config returns the configuration the service was built with
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Result describes one conversion
type Result struct {
	ID         string
	Dialect    classify.Dialect
	Fleet      *fleet.Fleet
	Unresolved []fleet.Unresolved // empty under the log policy
	Output     string
}

// Identify reports the dialect of text and the scores behind it
func (s *Service) Identify(text string) (classify.Dialect, classify.Scores) {
	return classify.IdentifyWithScores(text)
}

// Parse turns list text into a fleet and applies the unresolved policy
func (s *Service) Parse(ctx context.Context, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, err := s.loadCatalog()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger := s.logger.With("invocation", id)

	env := dialect.Env{
		Catalog:  cat,
		Resolver: s.resolver,
		GUIDs:    s.guids,
		Logger:   logger,
	}
	var (
		f *fleet.Fleet
		d classify.Dialect
	)
	if s.forced != nil {
		f, d, err = dialect.ParseAs(*s.forced, text, env)
	} else {
		f, d, err = dialect.Parse(text, env)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{ID: id, Dialect: d, Fleet: f}
	counts := f.Counts()
	logger.Info("parsed fleet", "dialect", d, "ships", counts.Ships, "upgrades", counts.Upgrades,
		"squadrons", counts.Squadrons, "objectives", counts.Objectives, "unresolved", counts.Unresolved)
	if logger.Enabled(ctx, slog.LevelDebug) {
		for _, p := range f.Layout() {
			logger.Debug("placed piece", "type", p.Type, "name", p.Name, "x", p.Coords.X, "y", p.Coords.Y)
		}
	}

	unresolved, err := s.applyPolicy(logger, f)
	if err != nil {
		return nil, err
	}
	res.Unresolved = unresolved
	return res, nil
}

func (s *Service) applyPolicy(logger *slog.Logger, f *fleet.Fleet) ([]fleet.Unresolved, error) {
	for _, u := range f.Unresolved {
		logger.Warn("unresolved piece", "line", u.LineNo, "type", u.Type, "name", u.Name, "reason", u.Reason)
	}
	switch s.cfg.Import.Unresolved {
	case config.PolicyLog:
		return nil, nil
	case config.PolicyStrict:
		if len(f.Unresolved) > 0 {
			return nil, &UnresolvedListError{Pieces: f.Unresolved}
		}
	}
	return f.Unresolved, nil
}

func (s *Service) serializeOptions() []vlb.Option {
	banner := s.cfg.Import.Banner
	switch len(banner) {
	case 0:
		return nil
	case 1:
		return []vlb.Option{vlb.WithBanner(banner[0], "")}
	}
	return []vlb.Option{vlb.WithBanner(banner[0], banner[1])}
}

// Import parses text and writes its save notation to vlbPath. An empty path
// picks a unique name in the output directory.
func (s *Service) Import(ctx context.Context, text, vlbPath string) (*Result, error) {
	res, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	if vlbPath == "" {
		vlbPath = workspace.UniqueName(s.cfg.Paths.OutputDir, ".vlb")
	}
	if err := vlb.WriteFile(vlbPath, res.Fleet, s.serializeOptions()...); err != nil {
		return nil, err
	}
	res.Output = vlbPath
	s.logger.Info("wrote vlb", "invocation", res.ID, "path", vlbPath)
	return res, nil
}

// Export encodes the save notation in vlbPath into a log at vlogPath
func (s *Service) Export(ctx context.Context, vlbPath, vlogPath string) (string, error) {
	data, err := os.ReadFile(vlbPath)
	if err != nil {
		return "", fmt.Errorf("read vlb %s: %w", vlbPath, err)
	}
	return s.pack(ctx, string(data), vlogPath)
}

// Convert parses text and writes the encoded log directly
func (s *Service) Convert(ctx context.Context, text, vlogPath string) (*Result, error) {
	res, err := s.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	out, err := s.pack(ctx, vlb.Serialize(res.Fleet, s.serializeOptions()...), vlogPath)
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}

// pack builds the archive inside a private workspace and copies it into place
// only once complete, so a failure never leaves a partial log at dst.
func (s *Service) pack(ctx context.Context, clear, dst string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	saved, err := vlog.Encode(clear)
	if err != nil {
		return "", err
	}

	ws, err := workspace.New(s.cfg.Paths.ScratchDir)
	if err != nil {
		return "", err
	}
	defer ws.Close()

	if dst == "" {
		dst = workspace.UniqueName(s.cfg.Paths.OutputDir, ".vlog")
	}
	staged := ws.Path("fleet.vlog")
	if err := vlog.Pack(staged, saved, s.cfg.Paths.TemplateDir); err != nil {
		return "", err
	}
	if err := copyFile(staged, dst); err != nil {
		return "", err
	}
	s.logger.Info("wrote vlog", "workspace", ws.ID, "path", dst)
	return dst, nil
}

// Decode unpacks the log at vlogPath and writes its decoded, formatted save
// notation to vlbPath
func (s *Service) Decode(ctx context.Context, vlogPath, vlbPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ws, err := workspace.New(s.cfg.Paths.ScratchDir)
	if err != nil {
		return "", err
	}
	defer ws.Close()

	saved, err := vlog.Unpack(vlogPath, ws.Dir)
	if err != nil {
		return "", err
	}
	clear, err := vlog.Decode(strings.TrimSpace(saved))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", vlogPath, err)
	}

	if vlbPath == "" {
		vlbPath = workspace.UniqueName(s.cfg.Paths.OutputDir, ".vlb")
	}
	if err := writeFile(vlbPath, []byte(vlog.Format(clear))); err != nil {
		return "", err
	}
	s.logger.Info("decoded vlog", "workspace", ws.ID, "source", vlogPath, "path", vlbPath)
	return vlbPath, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", dst, cerr)
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return nil
}
