package trailfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trail-simulator/internal/geo"
)

const camiKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>Camins</name>
    <Placemark>
      <name>Cami de Sant Jaume - Etapa 1</name>
      <LineString>
        <coordinates>
          2.1734,41.3851,12 2.1740,41.3860,14
          2.1752,41.3871,15
        </coordinates>
      </LineString>
    </Placemark>
    <Placemark>
      <name>Second</name>
      <LineString><coordinates>9,9,0</coordinates></LineString>
    </Placemark>
  </Document>
</kml>`

func TestParseKML(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantName string
		want     []geo.Coordinate
		wantErr  bool
	}{
		{
			name:     "flips lon,lat order",
			doc:      `<name>Test</name><coordinates>1.0,2.0,0 1.1,2.1,0</coordinates>`,
			wantName: "Test",
			want:     []geo.Coordinate{{Lat: 2.0, Lon: 1.0}, {Lat: 2.1, Lon: 1.1}},
		},
		{
			name:    "empty coordinates block",
			doc:     `<name>Test</name><coordinates></coordinates>`,
			wantErr: true,
		},
		{
			name:    "no coordinates block",
			doc:     `<name>Test</name>`,
			wantErr: true,
		},
		{
			name:    "only malformed tokens",
			doc:     `<coordinates>abc 1.0 x,y,z</coordinates>`,
			wantErr: true,
		},
		{
			name:     "malformed tokens are skipped",
			doc:      `<name>Mixed</name><coordinates>1,2 junk 3,oops 5,6,7 8</coordinates>`,
			wantName: "Mixed",
			want:     []geo.Coordinate{{Lat: 2, Lon: 1}, {Lat: 6, Lon: 5}},
		},
		{
			name:     "missing name uses default",
			doc:      `<coordinates>1,2</coordinates>`,
			wantName: "Fallback",
			want:     []geo.Coordinate{{Lat: 2, Lon: 1}},
		},
		{
			name:     "out of range tuples are skipped",
			doc:      `<coordinates>200,2 1,95 1,2</coordinates>`,
			wantName: "Fallback",
			want:     []geo.Coordinate{{Lat: 2, Lon: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ParseKML(tt.doc, "Fallback")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrParseFailure))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, path.Name)
			assert.Equal(t, tt.want, path.Points())
		})
	}
}

func TestParseKMLFirstPlacemark(t *testing.T) {
	path, err := ParseKML(camiKML, DefaultTrailName)
	require.NoError(t, err)

	assert.Equal(t, "Cami de Sant Jaume - Etapa 1", path.Name)
	require.Equal(t, 3, path.Len())
	assert.Equal(t, geo.Coordinate{Lat: 41.3851, Lon: 2.1734}, path.At(0))
	assert.Equal(t, geo.Coordinate{Lat: 41.3871, Lon: 2.1752}, path.At(2))
}

func TestParseKMLDeterministic(t *testing.T) {
	a, errA := ParseKML(camiKML, "x")
	b, errB := ParseKML(camiKML, "x")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)

	_, errA = ParseKML("<kml/>", "x")
	_, errB = ParseKML("<kml/>", "x")
	assert.Equal(t, errA.Error(), errB.Error())
}

const trackGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Montserrat loop</name>
    <trkseg>
      <trkpt lat="41.5930" lon="1.8370"></trkpt>
      <trkpt lat="41.5940" lon="1.8380"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="41.5950" lon="1.8390"></trkpt>
    </trkseg>
  </trk>
</gpx>`

const routeGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <rte>
    <rtept lat="42.0" lon="2.0"></rtept>
    <rtept lat="42.1" lon="2.1"></rtept>
  </rte>
</gpx>`

func TestParseGPX(t *testing.T) {
	path, err := ParseGPX([]byte(trackGPX), DefaultTrailName)
	require.NoError(t, err)
	assert.Equal(t, "Montserrat loop", path.Name)
	require.Equal(t, 3, path.Len())
	assert.Equal(t, geo.Coordinate{Lat: 41.5950, Lon: 1.8390}, path.At(2))

	path, err = ParseGPX([]byte(routeGPX), DefaultTrailName)
	require.NoError(t, err)
	assert.Equal(t, DefaultTrailName, path.Name)
	assert.Equal(t, 2, path.Len())

	_, err = ParseGPX([]byte(`<gpx version="1.1"></gpx>`), DefaultTrailName)
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	kmlPath := filepath.Join(dir, "cami.kml")
	gpxPath := filepath.Join(dir, "loop.GPX")
	require.NoError(t, os.WriteFile(kmlPath, []byte(camiKML), 0o644))
	require.NoError(t, os.WriteFile(gpxPath, []byte(trackGPX), 0o644))

	k, err := Load(kmlPath, DefaultTrailName)
	require.NoError(t, err)
	assert.Equal(t, 3, k.Len())

	g, err := Load(gpxPath, DefaultTrailName)
	require.NoError(t, err)
	assert.Equal(t, "Montserrat loop", g.Name)

	_, err = Load(filepath.Join(dir, "missing.kml"), DefaultTrailName)
	assert.ErrorIs(t, err, ErrParseFailure)
}
