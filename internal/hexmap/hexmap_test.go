package hexmap

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eternumwasd/api/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const locationsJSON = `{
  "maxLayers": 2,
  "center": {"x": 0, "y": 0, "originalContractX": 2147483646, "originalContractY": 2147483646},
  "banks": [
    {"normalizedX": 100, "normalizedY": 0, "originalContractX": 300, "originalContractY": 200, "side": 0, "layer": 5, "point": 0}
  ],
  "allPotentialSpots": [
    {"normalizedX": -20, "normalizedY": 10, "originalContractX": 10, "originalContractY": 20, "side": 1, "layer": 1, "point": 0},
    {"normalizedX": 30, "normalizedY": -40, "originalContractX": 11, "originalContractY": 21, "side": 2, "layer": 1, "point": 1}
  ]
}`

const settlementJSON = `{
  "maxLayers": 1,
  "center": {"x": 0, "y": 0},
  "banks": [],
  "allPotentialSpots": [
    {"normalizedX": 1, "normalizedY": 1, "originalContractX": 10, "originalContractY": 20, "side": 0, "layer": 1, "point": 0},
    {"normalizedX": 2, "normalizedY": 2, "originalContractX": 11, "originalContractY": 21, "side": 0, "layer": 1, "point": 1}
  ],
  "occupiedContractSpots": {
    "0": {"normalizedX": 1, "normalizedY": 1, "originalContractX": 10, "originalContractY": 20, "side": 0, "layer": 1, "point": 0}
  },
  "zones": [
    {"zoneId": 3, "name": "Zone 3", "locations": [
      {"normalizedX": 1, "normalizedY": 1, "originalContractX": 10, "originalContractY": 20, "side": 0, "layer": 1, "point": 0}
    ]}
  ]
}`

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LocationsFile), []byte(locationsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SettlementFile), []byte(settlementJSON), 0o644))
	return dir
}

// ============================================================================
// Assets
// ============================================================================

func TestParseLocations_Index(t *testing.T) {
	t.Parallel()
	l, err := ParseLocations([]byte(locationsJSON))
	require.NoError(t, err)

	spot, ok := l.SpotAt(11, 21)
	require.True(t, ok)
	assert.Equal(t, 2, spot.Side)
	assert.Equal(t, "11-21", spot.Key())

	_, ok = l.SpotAt(300, 200)
	assert.False(t, ok, "banks are not potential spots")

	bank, ok := l.BankAt(300, 200)
	require.True(t, ok)
	assert.Equal(t, 5, bank.Layer)

	assert.True(t, l.IsCenter(2147483646, 2147483646))
	assert.False(t, l.IsCenter(10, 20))
	assert.Len(t, l.Points(), 4)
}

func TestParseLocations_Invalid(t *testing.T) {
	t.Parallel()
	_, err := ParseLocations([]byte(`{"allPotentialSpots": "nope"}`))
	assert.Error(t, err)
}

func TestParseSettlement_ZonesAndOccupied(t *testing.T) {
	t.Parallel()
	s, err := ParseSettlement([]byte(settlementJSON))
	require.NoError(t, err)

	zone, ok := s.ZoneAt(10, 20)
	require.True(t, ok)
	assert.Equal(t, 3, zone.ZoneID)
	_, ok = s.ZoneAt(11, 21)
	assert.False(t, ok)

	assert.True(t, s.IsOccupied(10, 20))
	assert.False(t, s.IsOccupied(11, 21))
	assert.False(t, s.IsCenter(0, 0), "center without contract coordinates never matches")
}

// ============================================================================
// Colors
// ============================================================================

func TestHSLToHex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		h, s, l float64
		want    string
	}{
		{0, 100, 50, "#ff0000"},
		{120, 100, 50, "#00ff00"},
		{240, 100, 50, "#0000ff"},
		{80, 75, 60, "#b3e64c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HSLToHex(tt.h, tt.s, tt.l))
	}
}

func TestMemberPalette(t *testing.T) {
	t.Parallel()
	palette := GeneratePalette(50, 75, 60)
	require.Len(t, palette, 50)
	assert.Equal(t, "#b3e64c", palette[0])
	assert.Equal(t, "#9ce830", palette[1], "second color shifts hue by 5 and oscillates S/L")
	assert.Equal(t, palette[0], MemberColor(0))
	assert.Equal(t, MemberColor(3), MemberColor(53), "indexes wrap around the palette")
}

func TestVillageDensityColor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		count, max int
		want       string
	}{
		{"no villages", 0, 5, DefaultFill},
		{"busiest realm is red", 4, 4, "#f42525"},
		{"half is yellow", 2, 4, "#f4f425"},
		{"tiny ratio is floored", 1, 100, "#29f425"},
		{"zero max treated as one", 1, 0, "#f42525"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VillageDensityColor(tt.count, tt.max))
		})
	}
}

func TestZoneColorAndLabel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#be4bdb", ZoneColor(1))
	assert.Equal(t, "#e03131", ZoneColor(12))
	assert.Equal(t, DefaultFill, ZoneColor(13))

	assert.Equal(t, "North (Center)", ZoneLabel(2, "North"))
	assert.Equal(t, "East (Bank)", ZoneLabel(8, "East"))
	assert.Equal(t, "East (bank ring)", ZoneLabel(8, "East (bank ring)"))
	assert.Equal(t, "Outer", ZoneLabel(20, "Outer"))
}

// ============================================================================
// ViewBox
// ============================================================================

func TestBaseViewBox(t *testing.T) {
	t.Parallel()
	got := BaseViewBox([]model.MapPoint{{X: 0, Y: 0}, {X: 100, Y: 20}}, LiveHexSize)
	want := model.ViewBox{X: -55, Y: -55, Width: 210, Height: 200}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BaseViewBox mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, EmptyViewBox, BaseViewBox(nil, LiveHexSize))
}

func TestViewport_ZoomClamps(t *testing.T) {
	t.Parallel()
	v := NewViewport(model.ViewBox{X: 0, Y: 0, Width: 100, Height: 100})
	for i := 0; i < 20; i++ {
		v = v.ZoomIn()
	}
	assert.Equal(t, MaxZoom, v.Zoom)
	for i := 0; i < 40; i++ {
		v = v.ZoomOut()
	}
	assert.Equal(t, MinZoom, v.Zoom)
	assert.Equal(t, 1.0, NewViewport(model.ViewBox{}).WithZoom(0).Zoom)
}

func TestViewport_PanAndViewBox(t *testing.T) {
	t.Parallel()
	base := model.ViewBox{X: 0, Y: 0, Width: 100, Height: 100}
	v := NewViewport(base).WithZoom(2)

	limitX, limitY := v.PanLimits()
	assert.Equal(t, 25.0, limitX)
	assert.Equal(t, 25.0, limitY)

	v = v.Pan(1000, -10)
	want := model.ViewBox{X: 50, Y: 15, Width: 50, Height: 50}
	if diff := cmp.Diff(want, v.ViewBox()); diff != "" {
		t.Errorf("ViewBox mismatch (-want +got):\n%s", diff)
	}

	zoomedOut := NewViewport(base).WithZoom(MinZoom).Pan(30, 30)
	assert.Equal(t, 0.0, zoomedOut.OffsetX, "a window larger than the base cannot pan")
	assert.Equal(t, -50.0, zoomedOut.ViewBox().X)
}

func TestViewport_NonFiniteInputIgnored(t *testing.T) {
	t.Parallel()
	base := model.ViewBox{X: 0, Y: 0, Width: 100, Height: 100}

	v := NewViewport(base).WithZoom(math.Inf(1))
	assert.Equal(t, 1.0, v.Zoom)

	v = NewViewport(base).WithZoom(2).Pan(math.NaN(), math.Inf(-1))
	assert.Equal(t, 0.0, v.OffsetX)
	assert.Equal(t, 0.0, v.OffsetY)
	if diff := cmp.Diff(model.ViewBox{X: 25, Y: 25, Width: 50, Height: 50}, v.ViewBox()); diff != "" {
		t.Errorf("ViewBox mismatch (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Store
// ============================================================================

func TestStore_Load(t *testing.T) {
	t.Parallel()
	s := NewStore(writeAssets(t))
	require.NoError(t, s.Load())

	l, err := s.Locations()
	require.NoError(t, err)
	assert.Len(t, l.Spots, 2)

	st, err := s.Settlement()
	require.NoError(t, err)
	assert.Len(t, st.Zones, 1)
	assert.False(t, s.LoadedAt().IsZero())
}

func TestStore_MissingAssets(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir())
	err := s.Load()
	require.Error(t, err)

	_, err = s.Locations()
	assert.ErrorIs(t, err, ErrAssetUnavailable)
	_, err = s.Settlement()
	assert.ErrorIs(t, err, ErrAssetUnavailable)
}

func TestStore_WatchReloads(t *testing.T) {
	t.Parallel()
	dir := writeAssets(t)
	s := NewStore(dir)
	s.SetDebounce(10 * time.Millisecond)
	require.NoError(t, s.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))
	defer s.Stop()

	updated := `{"maxLayers": 1, "banks": [], "allPotentialSpots": [
	  {"normalizedX": 0, "normalizedY": 0, "originalContractX": 1, "originalContractY": 1, "side": 0, "layer": 0, "point": 0}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, LocationsFile), []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		l, err := s.Locations()
		return err == nil && len(l.Spots) == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestStore_WatchAgainAfterContextCancel(t *testing.T) {
	t.Parallel()
	dir := writeAssets(t)
	s := NewStore(dir)
	s.SetDebounce(10 * time.Millisecond)
	require.NoError(t, s.Load())

	first, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Watch(first))
	assert.True(t, s.Watching())
	cancel()
	require.Eventually(t, func() bool { return !s.Watching() }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Watch(context.Background()))
	defer s.Stop()
	assert.True(t, s.Watching())

	updated := `{"maxLayers": 1, "banks": [], "allPotentialSpots": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, LocationsFile), []byte(updated), 0o644))
	require.Eventually(t, func() bool {
		l, err := s.Locations()
		return err == nil && len(l.Spots) == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestStore_WatchKeepsPreviousOnBadWrite(t *testing.T) {
	t.Parallel()
	dir := writeAssets(t)
	s := NewStore(dir)
	s.SetDebounce(10 * time.Millisecond)
	require.NoError(t, s.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, LocationsFile), []byte("{broken"), 0o644))
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	l, err := s.Locations()
	require.NoError(t, err)
	assert.Len(t, l.Spots, 2)
}
