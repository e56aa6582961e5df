package dialect

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listbuilder/internal/catalog"
	"listbuilder/internal/catalog/catalogtest"
	"listbuilder/internal/classify"
	"listbuilder/internal/fleet"
	"listbuilder/internal/log"
	"listbuilder/internal/nomenclature"
)

type shipSummary struct {
	Name     string
	Upgrades []string
}

type summary struct {
	Name       string
	Faction    string
	Points     int
	Commander  string
	Ships      []shipSummary
	Squadrons  []string
	Objectives []string
	Unresolved []string
}

func summarize(f *fleet.Fleet) summary {
	s := summary{Name: f.Name, Faction: f.Faction, Points: f.Points, Commander: f.Commander}
	for _, ship := range f.Ships {
		ss := shipSummary{Name: ship.Name}
		for _, u := range ship.Upgrades {
			ss.Upgrades = append(ss.Upgrades, u.Name)
		}
		s.Ships = append(s.Ships, ss)
	}
	for _, sq := range f.Squadrons {
		s.Squadrons = append(s.Squadrons, sq.Name)
	}
	for _, o := range f.Objectives() {
		s.Objectives = append(s.Objectives, string(o.Category)+":"+o.Piece.Name)
	}
	for _, u := range f.Unresolved {
		s.Unresolved = append(s.Unresolved, string(u.Type)+":"+u.Name)
	}
	return s
}

func testEnv(t *testing.T) Env {
	t.Helper()
	return Env{
		Catalog:  catalogtest.Memory(t),
		Resolver: nomenclature.Default(),
		GUIDs:    fleet.NewSequentialGUIDs(1),
		Logger:   log.Discard(),
	}
}

func readList(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestSampleLists(t *testing.T) {
	imperialObjectives := []string{"assault:advancedgunnery", "defense:contestedoutpost", "navigation:dangerousterritory"}
	tests := []struct {
		file    string
		dialect classify.Dialect
		want    summary
	}{
		{
			file:    "aff.txt",
			dialect: classify.AFF,
			want: summary{
				Ships:     []shipSummary{{"assaultfrigatemarkiia", []string{"externalracks"}}},
				Squadrons: []string{"biggsdarklighter"},
			},
		},
		{
			file:    "fab.txt",
			dialect: classify.Fab,
			want: summary{
				Faction: "Rebel Alliance",
				Points:  186,
				Ships: []shipSummary{
					{"assaultfrigatemarkiia", []string{"gunneryteam", "enhancedarmament"}},
					{"cr90corvettea", []string{"leiaorgana"}},
					{"nebulonbescortfrigate", nil},
				},
				Squadrons: []string{"xwingsquadron", "biggsdarklighter"},
			},
		},
		{
			file:    "kingston.txt",
			dialect: classify.Kingston,
			want: summary{
				Name:      "Rebel Test",
				Faction:   "Rebel Alliance",
				Commander: "General Dodonna",
				Ships: []shipSummary{
					{"assaultfrigatemarkiia", []string{"gunneryteam", "enhancedarmament"}},
					{"cr90corvettea", []string{"leiaorgana"}},
				},
				Squadrons:  []string{"xwingsquadron", "biggsdarklighter"},
				Objectives: []string{"assault:mostwanted", "defense:firelanes", "navigation:solarcorona"},
			},
		},
		{
			file:    "warlord.txt",
			dialect: classify.Warlord,
			want: summary{
				Faction:   "Galactic Empire",
				Points:    400,
				Commander: "Admiral Motti",
				Ships: []shipSummary{
					{"victoryiistardestroyer", []string{"admiralmotti", "gunneryteam", "dominator"}},
					{"victoryistardestroyer", []string{"darthvadercommander"}},
				},
				Squadrons:  []string{"tiefightersquadron", "darthvadertieadvanced", "howlrunner"},
				Objectives: imperialObjectives,
			},
		},
		{
			file:    "afd.txt",
			dialect: classify.AFD,
			want: summary{
				Name:   "Imperial Test",
				Points: 400,
				Ships: []shipSummary{
					{"victoryiistardestroyer", []string{"admiralmotti", "gunneryteam"}},
					{"victoryistardestroyer", []string{"darthvadercommander"}},
				},
				Squadrons:  []string{"tiefightersquadron", "howlrunner"},
				Objectives: imperialObjectives,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, d, err := Parse(readList(t, tt.file), testEnv(t))
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, d)
			if diff := cmp.Diff(tt.want, summarize(f)); diff != "" {
				t.Errorf("fleet mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	for _, file := range []string{"aff.txt", "fab.txt", "kingston.txt", "warlord.txt", "afd.txt"} {
		text := readList(t, file)
		a, _, err := Parse(text, testEnv(t))
		require.NoError(t, err)
		b, _, err := Parse(text, testEnv(t))
		require.NoError(t, err)
		if diff := cmp.Diff(a.Pieces(), b.Pieces()); diff != "" {
			t.Errorf("%s: pieces differ between runs:\n%s", file, diff)
		}
	}
}

func TestCRLFAndMojibakeInput(t *testing.T) {
	text := readList(t, "kingston.txt")
	want, _, err := Parse(text, testEnv(t))
	require.NoError(t, err)

	garbled := strings.ReplaceAll(strings.ReplaceAll(text, "•", "â€¢"), "\n", "\r\n")
	got, d, err := Parse(garbled, testEnv(t))
	require.NoError(t, err)
	assert.Equal(t, classify.Kingston, d)
	assert.Equal(t, summarize(want), summarize(got))
}

func TestUnknownPieceDoesNotAbort(t *testing.T) {
	text := "ship:millennium falcon\nupgrade:gunnery team\nship:cr90 corvette a\nupgrade:leia organa\nsquadron:x-wing"
	f, err := aff{}.Parse(text, testEnv(t))
	require.NoError(t, err)

	got := summarize(f)
	assert.Equal(t, []shipSummary{{"cr90corvettea", []string{"leiaorgana"}}}, got.Ships)
	assert.Equal(t, []string{"xwingsquadron"}, got.Squadrons)
	assert.Equal(t, []string{"shipcard:millenniumfalcon", "upgradecard:gunneryteam"}, got.Unresolved)
	assert.Equal(t, 1, f.Unresolved[0].LineNo)
	assert.Equal(t, 2, f.Unresolved[1].LineNo)
}

func TestUpgradeBeforeShipFails(t *testing.T) {
	_, err := aff{}.Parse("upgrade:gunnery team\nship:cr90 corvette a", testEnv(t))
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 1, pf.LineNo)
	assert.Equal(t, "upgrade:gunnery team", pf.Line)
	assert.Equal(t, classify.AFF, pf.Dialect)
	assert.True(t, errors.Is(err, ErrMalformedLine))
}

func TestWarlordsStartingAtShip(t *testing.T) {
	text := "Victory I-class Star Destroyer (73 points)\n-  Gunnery Team  ( 7  points)\n-  Darth Vader"
	_, err := warlords{}.Parse(text, testEnv(t))
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 3, pf.LineNo, "the first line was read as a ship, so the failure is the upgrade without a cost")
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Empty(t, pf.Hint)
}

func TestWarlordsFirstWordMustBeginShipName(t *testing.T) {
	// "corvette" occurs inside cr90corvette but does not begin any ship name.
	f, err := warlords{}.Parse("Corvette Escort (44 points)", testEnv(t))
	require.NoError(t, err)
	assert.Empty(t, f.Ships)
	assert.Empty(t, f.Unresolved)

	f, err = warlords{}.Parse("CR90 Corvette A (44 points)", testEnv(t))
	require.NoError(t, err)
	assert.Equal(t, []shipSummary{{Name: "cr90corvettea"}}, summarize(f).Ships)
}

func TestWarlordsFlagshipHint(t *testing.T) {
	text := "Victory I-class Star Destroyer (73 points)\n-  Gunnery Team (7 points)\n= 80 points\nBogus Objective: Most Wanted"
	_, err := warlords{}.Parse(text, testEnv(t))
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 4, pf.LineNo)
	assert.Contains(t, pf.Hint, "Flagship")
	assert.ErrorIs(t, err, fleet.ErrInvalidCategory)
}

func TestKingstonImperialVariants(t *testing.T) {
	imperial, err := kingston{}.Parse("Faction: Imperial\nVictory I (73)\n• Gunnery Team (7)", testEnv(t))
	require.NoError(t, err)
	require.Len(t, imperial.Ships, 1)
	assert.Equal(t, "victoryistardestroyerimp", imperial.Ships[0].Name)
	assert.Equal(t, "victorystardestroyer", imperial.Ships[0].Token.Name)

	rebel, err := kingston{}.Parse("Faction: Republic\nVictory I (73)", testEnv(t))
	require.NoError(t, err)
	require.Len(t, rebel.Ships, 1)
	assert.Equal(t, "victoryistardestroyer", rebel.Ships[0].Name)
}

func TestKingstonCustomObjectiveSkipped(t *testing.T) {
	f, err := kingston{}.Parse("Assault: Custom Scenario\nDefense: Fire Lanes\nNavigation:", testEnv(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"defense:firelanes"}, summarize(f).Objectives)
	assert.Empty(t, f.Unresolved)
}

func TestFabsUnknownEntry(t *testing.T) {
	f, err := fabs{}.Parse("1 • Millennium Falcon (23)\n2 • CR90 Corvette A (44)\n3 • Rogue Squadron (10)", testEnv(t))
	require.NoError(t, err)
	assert.Equal(t, []string{":millenniumfalcon", ":roguesquadron"}, summarize(f).Unresolved)
	assert.Len(t, f.Ships, 1)
}

func TestAFDMalformedUpgrade(t *testing.T) {
	text := "Test (10/400)\n==========\nCR90 Corvette A (44)\n· Leia Organa (3) (again)"
	_, err := afd{}.Parse(text, testEnv(t))
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, 4, pf.LineNo)
}

// panicCatalog simulates a broken store
type panicCatalog struct{}

func (panicCatalog) Lookup(catalog.PieceType, string, catalog.MatchMode) (catalog.Template, bool, error) {
	panic("store exploded")
}

type failingCatalog struct{}

func (failingCatalog) Lookup(catalog.PieceType, string, catalog.MatchMode) (catalog.Template, bool, error) {
	return catalog.Template{}, false, errors.New("database is locked")
}

func TestPanicBecomesParseFailure(t *testing.T) {
	env := testEnv(t)
	env.Catalog = panicCatalog{}
	_, err := aff{}.Parse("ship:cr90 corvette a", env)
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "store exploded")
}

func TestCatalogErrorIsFatal(t *testing.T) {
	env := testEnv(t)
	env.Catalog = failingCatalog{}
	_, err := fabs{}.Parse("1 • CR90 Corvette A (44)", env)
	var pf *ParseFailure
	require.ErrorAs(t, err, &pf)
	assert.Contains(t, err.Error(), "database is locked")
	assert.False(t, errors.Is(err, fleet.ErrUnresolved))
}

func TestFor(t *testing.T) {
	for _, d := range classify.Dialects {
		p, err := For(d)
		require.NoError(t, err)
		assert.Equal(t, d, p.Dialect())
	}
	_, err := For(classify.Dialect(42))
	assert.Error(t, err)
}
