package leveldata

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.2" orientation="orthogonal" renderorder="right-down" width="4" height="3" tilewidth="16" tileheight="16" infinite="0" nextlayerid="4" nextobjectid="4">
 <tileset firstgid="1" name="tiles" tilewidth="16" tileheight="16" tilecount="4" columns="4">
  <image source="tiles.png" width="64" height="16"/>
  <tile id="1">
   <properties>
    <property name="slope" value="45_up_right"/>
   </properties>
  </tile>
  <tile id="2">
   <properties>
    <property name="oneway" type="bool" value="true"/>
   </properties>
  </tile>
 </tileset>
 <layer id="1" name="wg-tiles" width="4" height="3">
  <data encoding="csv">
0,0,0,0,
0,2,3,0,
1,1,1,1
</data>
 </layer>
 <objectgroup id="2" name="Platforms">
  <object id="1" x="0" y="8" width="32" height="4"/>
 </objectgroup>
 <objectgroup id="3" name="PlayerSpawn">
  <object id="2" x="40" y="16">
   <properties>
    <property name="spawnIndex" type="int" value="1"/>
   </properties>
  </object>
  <object id="3" x="8" y="16"/>
 </objectgroup>
</map>
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"levels/alpha.tmx": &fstest.MapFile{Data: []byte(testTMX)},
		"levels/beta.tmx":  &fstest.MapFile{Data: []byte(testTMX)},
	}
}

func TestLoadCollisionData(t *testing.T) {
	data, err := LoadCollisionData(testFS(), "levels/alpha.tmx")
	require.NoError(t, err)

	assert.Equal(t, "alpha", data.Name)
	assert.Equal(t, 64, data.MapWidth)
	assert.Equal(t, 48, data.MapHeight)
	assert.Equal(t, 16, data.TileWidth)
	assert.Equal(t, 16, data.TileHeight)

	// bottom row of four solids plus one slope tile
	require.Len(t, data.SolidRects, 5)
	assert.Equal(t, SolidRect{X: 16, Y: 16, W: 16, H: 16, SlopeType: "45_up_right"}, data.SolidRects[0])
	for _, r := range data.SolidRects[1:] {
		assert.Equal(t, 32.0, r.Y)
		assert.Empty(t, r.SlopeType)
	}

	// one-way tile plus the Platforms object
	require.Len(t, data.Platforms, 2)
	assert.Contains(t, data.Platforms, PlatformRect{X: 32, Y: 16, W: 16, H: 16})
	assert.Contains(t, data.Platforms, PlatformRect{X: 0, Y: 8, W: 32, H: 4})

	require.Len(t, data.SpawnPoints, 2)
	assert.Equal(t, 8.0, data.SpawnPoints[0].X)
	assert.Equal(t, 40.0, data.SpawnPoints[1].X)
	assert.Equal(t, 1, data.SpawnPoints[1].Index)
}

func TestLoadCollisionDataMissingFile(t *testing.T) {
	_, err := LoadCollisionData(testFS(), "levels/missing.tmx")
	assert.Error(t, err)
}

func TestLoadAllLevels(t *testing.T) {
	levels, names, err := LoadAllLevels(testFS(), "levels")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
	assert.Len(t, levels, 2)
	assert.Equal(t, "beta", levels["beta"].Name)
}

func TestLoadAllLevelsEmptyDir(t *testing.T) {
	_, _, err := LoadAllLevels(fstest.MapFS{}, "levels")
	assert.Error(t, err)
}
